package host

import "strings"

// The host exposes a node's type under several names depending on how the
// node was created. Each accessor below is optional.

type comfyClasser interface{ ComfyClass() string }

type classTyper interface{ ClassType() string }

type comfyClassTyper interface{ ComfyClassType() string }

type typer interface{ Type() string }

type constructorClasser interface{ ConstructorClass() string }

// NodeTypeID resolves the registry type id of a node instance. Sources are
// tried in order: ComfyClass, ClassType, ComfyClassType, Type,
// ConstructorClass, and finally the instance id.
func NodeTypeID(n Node) string {
	if n == nil {
		return ""
	}
	candidates := []func() string{
		func() string {
			if v, ok := n.(comfyClasser); ok {
				return v.ComfyClass()
			}
			return ""
		},
		func() string {
			if v, ok := n.(classTyper); ok {
				return v.ClassType()
			}
			return ""
		},
		func() string {
			if v, ok := n.(comfyClassTyper); ok {
				return v.ComfyClassType()
			}
			return ""
		},
		func() string {
			if v, ok := n.(typer); ok {
				return v.Type()
			}
			return ""
		},
		func() string {
			if v, ok := n.(constructorClasser); ok {
				return v.ConstructorClass()
			}
			return ""
		},
	}
	for _, get := range candidates {
		if id := strings.TrimSpace(get()); id != "" {
			return id
		}
	}
	return n.InstanceID()
}
