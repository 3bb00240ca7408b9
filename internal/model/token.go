package model

// Role is a permission level granted on a namespace pattern.
type Role string

// Roles understood by the server, weakest to strongest.
const (
	RoleViewer    Role = "viewer"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one the server understands.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleDeveloper, RoleAdmin:
		return true
	}

	return false
}

// RoleBindings maps namespace patterns (e.g. "analytics/*") to roles.
type RoleBindings map[string][]Role

// TokenRequest asks the server to mint a scoped token.
type TokenRequest struct {
	PrimaryNamespace string       `json:"primary_namespace"`
	Expiration       string       `json:"expiration"`
	RoleBindings     RoleBindings `json:"role_bindings"`
}
