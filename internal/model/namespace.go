// Package model defines the data structures exchanged with a conda-store server.
package model

// Namespace scopes environments and role bindings on the server.
type Namespace struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// NamespaceStatus is the envelope status a namespace reports while it settles.
type NamespaceStatus string

const (
	// NamespaceOK indicates the namespace is provisioned and usable.
	NamespaceOK NamespaceStatus = "ok"
	// NamespaceError indicates provisioning failed.
	NamespaceError NamespaceStatus = "error"
)

// Settled reports whether the namespace has finished provisioning.
func (s NamespaceStatus) Settled() bool {
	return s == NamespaceOK || s == NamespaceError
}
