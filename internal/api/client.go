// Package api implements the REST client for a conda-store server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	m "conda.store/pkg/condastore/internal/model"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultRetryMax = 3
	defaultPageSize = 100
)

// Client talks to a conda-store server over its v1 REST API.
type Client struct {
	base  *url.URL
	token string
	http  *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout bounds each individual HTTP request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.HTTPClient.Timeout = timeout
	}
}

// WithRetryMax sets how often a failed request is retried.
func WithRetryMax(retries int) Option {
	return func(c *Client) {
		c.http.RetryMax = retries
	}
}

// NewClient builds a Client for the given server URL.
func NewClient(server string, opts ...Option) (*Client, error) {
	base, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", server, err)
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q needs a scheme and host", server)
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = defaultRetryMax
	httpClient.HTTPClient.Timeout = defaultTimeout
	httpClient.Logger = nil

	client := &Client{
		base: base,
		http: httpClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// envelope is the JSON wrapper the server puts around every response body.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
	Count   int             `json:"count"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("%s %s: %s (HTTP %d)", e.Method, e.Path, msg, e.StatusCode)
}

// IsUnauthorized reports whether err is an authentication or permission
// failure, the cases where a fresh `conda-store login` helps.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// do performs one API request and decodes the response envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, query url.Values) (*envelope, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}

		payload = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.endpoint(path, query), payload)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer closeBody(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	slog.Debug("api request", "method", method, "path", path, "status", resp.StatusCode)

	var env envelope
	if len(raw) > 0 {
		// Error bodies still carry the envelope; keep its message if it parses.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Method:     method,
			Path:       path,
		}
	}

	return &env, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		slog.Debug("close response body", "error", err)
	}
}

func decodeData(env *envelope, target any) error {
	if len(env.Data) == 0 {
		return errors.New("response carried no data")
	}

	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}

	return nil
}

// listPages drains a paginated collection endpoint. collect decodes one
// page's data array and returns how many items it held.
func (c *Client) listPages(ctx context.Context, path string, query url.Values, collect func(json.RawMessage) (int, error)) error {
	page := 1
	seen := 0

	for {
		q := url.Values{}
		for key, values := range query {
			q[key] = values
		}

		q.Set("page", strconv.Itoa(page))
		q.Set("size", strconv.Itoa(defaultPageSize))

		env, err := c.do(ctx, http.MethodGet, path, nil, q)
		if err != nil {
			return err
		}

		n, err := collect(env.Data)
		if err != nil {
			return err
		}

		seen += n
		if n == 0 || seen >= env.Count {
			return nil
		}

		page++
	}
}

// Login exchanges credentials for an API token. The server sets a session
// cookie on /login which the token endpoint then redeems, so this flow runs
// on a dedicated client with a cookie jar.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("create cookie jar: %w", err)
	}

	session := &http.Client{
		Jar:     jar,
		Timeout: c.http.HTTPClient.Timeout,
	}

	if err := c.postJSON(ctx, session, "login", map[string]string{
		"username": username,
		"password": password,
	}, nil); err != nil {
		return "", fmt.Errorf("login as %q: %w", username, err)
	}

	var data struct {
		Token string `json:"token"`
	}

	if err := c.postJSON(ctx, session, "api/v1/token", nil, &data); err != nil {
		return "", fmt.Errorf("redeem session for token: %w", err)
	}

	if data.Token == "" {
		return "", errors.New("server returned an empty token")
	}

	return data.Token, nil
}

func (c *Client) postJSON(ctx context.Context, session *http.Client, path string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), reader)
	if err != nil {
		return fmt.Errorf("build request POST %s: %w", path, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := session.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer closeBody(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("POST %s: read response: %w", path, err)
	}

	var env envelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Method:     http.MethodPost,
			Path:       path,
		}
	}

	if target != nil {
		return decodeData(&env, target)
	}

	return nil
}

// CreateToken mints a scoped API token.
func (c *Client) CreateToken(ctx context.Context, req m.TokenRequest) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "api/v1/token", req, nil)
	if err != nil {
		return "", err
	}

	var data struct {
		Token string `json:"token"`
	}

	if err := decodeData(env, &data); err != nil {
		return "", err
	}

	return data.Token, nil
}

// ListNamespaces returns every namespace the token can see.
func (c *Client) ListNamespaces(ctx context.Context) ([]m.Namespace, error) {
	var namespaces []m.Namespace

	err := c.listPages(ctx, "api/v1/namespace/", nil, func(data json.RawMessage) (int, error) {
		var page []m.Namespace
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, fmt.Errorf("decode namespace page: %w", err)
		}

		namespaces = append(namespaces, page...)

		return len(page), nil
	})
	if err != nil {
		return nil, err
	}

	return namespaces, nil
}

// GetNamespaceStatus reports the provisioning state of a namespace.
func (c *Client) GetNamespaceStatus(ctx context.Context, name string) (m.NamespaceStatus, error) {
	env, err := c.do(ctx, http.MethodGet, "api/v1/namespace/"+name, nil, nil)
	if err != nil {
		return "", err
	}

	return m.NamespaceStatus(env.Status), nil
}

// CreateNamespace asks the server to provision a namespace. Provisioning is
// asynchronous; poll with WaitForNamespace.
func (c *Client) CreateNamespace(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodPost, "api/v1/namespace/"+name, nil, nil)

	return err
}

// DeleteNamespace removes a namespace and everything in it.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, "api/v1/namespace/"+name, nil, nil)

	return err
}

// ListEnvironments returns environments, optionally filtered to a namespace.
func (c *Client) ListEnvironments(ctx context.Context, namespace string) ([]m.Environment, error) {
	query := url.Values{}
	if namespace != "" {
		query.Set("namespace", namespace)
	}

	var environments []m.Environment

	err := c.listPages(ctx, "api/v1/environment/", query, func(data json.RawMessage) (int, error) {
		var page []m.Environment
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, fmt.Errorf("decode environment page: %w", err)
		}

		environments = append(environments, page...)

		return len(page), nil
	})
	if err != nil {
		return nil, err
	}

	return environments, nil
}

// GetEnvironment fetches a single environment.
func (c *Client) GetEnvironment(ctx context.Context, namespace, name string) (m.Environment, error) {
	env, err := c.do(ctx, http.MethodGet, "api/v1/environment/"+namespace+"/"+name, nil, nil)
	if err != nil {
		return m.Environment{}, err
	}

	var environment m.Environment
	if err := decodeData(env, &environment); err != nil {
		return m.Environment{}, err
	}

	return environment, nil
}

// DeleteEnvironment removes an environment from a namespace.
func (c *Client) DeleteEnvironment(ctx context.Context, namespace, name string) error {
	_, err := c.do(ctx, http.MethodDelete, "api/v1/environment/"+namespace+"/"+name, nil, nil)

	return err
}

// CreateSpecification submits an environment specification and returns the
// id of the build it triggered. The specification travels as raw YAML text.
func (c *Client) CreateSpecification(ctx context.Context, namespace, specification string) (int, error) {
	env, err := c.do(ctx, http.MethodPost, "api/v1/specification", map[string]string{
		"namespace":     namespace,
		"specification": specification,
	}, nil)
	if err != nil {
		return 0, err
	}

	var data struct {
		BuildID int `json:"build_id"`
	}

	if err := decodeData(env, &data); err != nil {
		return 0, err
	}

	return data.BuildID, nil
}

// ListBuilds returns all builds the token can see.
func (c *Client) ListBuilds(ctx context.Context) ([]m.Build, error) {
	var builds []m.Build

	err := c.listPages(ctx, "api/v1/build/", nil, func(data json.RawMessage) (int, error) {
		var page []m.Build
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, fmt.Errorf("decode build page: %w", err)
		}

		builds = append(builds, page...)

		return len(page), nil
	})
	if err != nil {
		return nil, err
	}

	return builds, nil
}

// GetBuild fetches a single build.
func (c *Client) GetBuild(ctx context.Context, id int) (m.Build, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("api/v1/build/%d/", id), nil, nil)
	if err != nil {
		return m.Build{}, err
	}

	var build m.Build
	if err := decodeData(env, &build); err != nil {
		return m.Build{}, err
	}

	return build, nil
}

// CancelBuild asks the server to stop a queued or running build.
func (c *Client) CancelBuild(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("api/v1/build/%d/cancel", id), nil, nil)

	return err
}

// BuildLogs fetches the raw log text of a build. Unlike every other
// endpoint, logs come back as plain text, not the JSON envelope.
func (c *Client) BuildLogs(ctx context.Context, id int) (string, error) {
	path := fmt.Sprintf("api/v1/build/%d/logs", id)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, nil), nil)
	if err != nil {
		return "", fmt.Errorf("build request GET %s: %w", path, err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", path, err)
	}
	defer closeBody(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("GET %s: read response: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			Path:       path,
		}
	}

	return string(raw), nil
}
