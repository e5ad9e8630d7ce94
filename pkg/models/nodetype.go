package models

// CoreSource is the source id used for node types shipped with the host editor.
const CoreSource = "core"

// NodeType is one entry of the host editor's node-type registry.
type NodeType struct {
	ID          string `json:"typeId" yaml:"typeId"`
	DisplayName string `json:"displayLabel" yaml:"displayLabel"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
}

// SourceID returns the plugin id that contributed the node type.
func (n NodeType) SourceID() string {
	if n.Source == "" {
		return CoreSource
	}
	return n.Source
}
