// Package model defines the data structures for template style analysis.
package model

// Path represents a file system path.
type Path string

// SerializedTemplateInfo is the wire form of a template descriptor.
// Data carries subtype-specific payload and is absent for plain descriptors.
type SerializedTemplateInfo struct {
	Type       string `json:"type" yaml:"type"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Data       []any  `json:"data,omitempty" yaml:"data,omitempty"`
}
