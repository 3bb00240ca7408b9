package model

// Environment is a named conda environment inside a namespace. Its packages
// come from the build the server currently points it at.
type Environment struct {
	ID             int       `json:"id" yaml:"id"`
	Namespace      Namespace `json:"namespace" yaml:"namespace"`
	Name           string    `json:"name" yaml:"name"`
	CurrentBuildID int       `json:"current_build_id" yaml:"current_build_id"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
}
