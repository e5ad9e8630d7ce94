package host

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
)

type bareNode struct{ id string }

func (n bareNode) InstanceID() string { return n.id }
func (n bareNode) Bounds() geom.Rect  { return geom.Rect{} }
func (n bareNode) Collapsed() bool    { return false }

type comfyNode struct {
	bareNode
	class string
}

func (n comfyNode) ComfyClass() string { return n.class }

type classTypeNode struct {
	bareNode
	classType string
}

func (n classTypeNode) ClassType() string { return n.classType }

type comfyClassTypeNode struct {
	bareNode
	v string
}

func (n comfyClassTypeNode) ComfyClassType() string { return n.v }

type typedNode struct {
	bareNode
	typ string
}

func (n typedNode) Type() string { return n.typ }

type ctorNode struct {
	bareNode
	ctor string
}

func (n ctorNode) ConstructorClass() string { return n.ctor }

type allNode struct {
	bareNode
}

func (allNode) ComfyClass() string       { return "" }
func (allNode) ClassType() string        { return "  " }
func (allNode) ComfyClassType() string   { return "" }
func (allNode) Type() string             { return "FromType" }
func (allNode) ConstructorClass() string { return "FromCtor" }

func TestNodeTypeIDFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"comfy class", comfyNode{bareNode{"1"}, "KSampler"}, "KSampler"},
		{"class type", classTypeNode{bareNode{"1"}, "CLIPTextEncode"}, "CLIPTextEncode"},
		{"comfy class type", comfyClassTypeNode{bareNode{"1"}, "VAEDecode"}, "VAEDecode"},
		{"type", typedNode{bareNode{"1"}, "LoadImage"}, "LoadImage"},
		{"constructor", ctorNode{bareNode{"1"}, "SaveImage"}, "SaveImage"},
		{"blank entries are skipped", allNode{bareNode{"1"}}, "FromType"},
		{"instance id last", bareNode{"42"}, "42"},
		{"empty comfy class falls through", comfyNode{bareNode{"9"}, ""}, "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NodeTypeID(tt.node))
		})
	}
}

func TestNodeTypeIDNil(t *testing.T) {
	assert.Equal(t, "", NodeTypeID(nil))
}
