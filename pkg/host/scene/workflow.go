package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattsolo1/grove-nodemanager/pkg/geom"
)

type workflowFile struct {
	Nodes  []workflowNode  `json:"nodes"`
	Groups []workflowGroup `json:"groups"`
	Extra  struct {
		DS struct {
			Scale  float64    `json:"scale"`
			Offset [2]float64 `json:"offset"`
		} `json:"ds"`
	} `json:"extra"`
}

type workflowNode struct {
	ID    json.RawMessage `json:"id"`
	Type  string          `json:"type"`
	Pos   [2]float64      `json:"pos"`
	Size  [2]float64      `json:"size"`
	Flags struct {
		Collapsed bool `json:"collapsed"`
	} `json:"flags"`
}

type workflowGroup struct {
	Title    string     `json:"title"`
	Bounding [4]float64 `json:"bounding"`
	Flags    struct {
		Pinned bool `json:"pinned"`
	} `json:"flags"`
}

// LoadWorkflow builds a scene from a saved editor workflow. Node positions
// in the file mark the body; the title strip is added above it.
func LoadWorkflow(r io.Reader) (*Scene, error) {
	var wf workflowFile
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}

	s := New()
	if wf.Extra.DS.Scale > 0 {
		s.view.Scale = wf.Extra.DS.Scale
		s.view.OffsetX = wf.Extra.DS.Offset[0]
		s.view.OffsetY = wf.Extra.DS.Offset[1]
	}

	for i, wn := range wf.Nodes {
		id := strings.Trim(string(wn.ID), `"`)
		if id == "" {
			id = fmt.Sprintf("node-%d", i)
		}
		s.AddNode(&Node{
			ID:          id,
			Class:       wn.Type,
			Rect:        geom.Rect{X: wn.Pos[0], Y: wn.Pos[1] - s.titleH, W: wn.Size[0], H: wn.Size[1] + s.titleH},
			IsCollapsed: wn.Flags.Collapsed,
		})
	}
	for _, wg := range wf.Groups {
		s.AddGroup(&Group{
			Name:     wg.Title,
			Rect:     geom.Rect{X: wg.Bounding[0], Y: wg.Bounding[1], W: wg.Bounding[2], H: wg.Bounding[3]},
			IsLocked: wg.Flags.Pinned,
		})
	}
	return s, nil
}
