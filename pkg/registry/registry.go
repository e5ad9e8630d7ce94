// Package registry holds the host editor's node-type registry as exported to
// a JSON or YAML file and lists it through the classification state.
package registry

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// Registry is a read-only set of node types.
type Registry struct {
	types []models.NodeType
	byID  map[string]int
}

// New builds a registry. Later duplicates of a type id replace earlier ones.
func New(types []models.NodeType) *Registry {
	r := &Registry{byID: make(map[string]int, len(types))}
	for _, t := range types {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			continue
		}
		if i, ok := r.byID[t.ID]; ok {
			r.types[i] = t
			continue
		}
		r.byID[t.ID] = len(r.types)
		r.types = append(r.types, t)
	}
	return r
}

type document struct {
	Nodes []models.NodeType `yaml:"nodes"`
}

// Load reads a registry export. The document is either a list of node types
// or a mapping with a `nodes` list. JSON input is accepted as YAML.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return New(nil), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	var types []models.NodeType
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&types); err != nil {
			return nil, fmt.Errorf("decode registry list: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode registry document: %w", err)
		}
		types = doc.Nodes
	default:
		return nil, fmt.Errorf("parse registry: expected a list or a mapping")
	}
	return New(types), nil
}

// LoadFile reads a registry export from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of node types.
func (r *Registry) Len() int {
	return len(r.types)
}

// Get returns a node type by id.
func (r *Registry) Get(id string) (models.NodeType, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.NodeType{}, false
	}
	return r.types[i], true
}

// All returns every node type in load order.
func (r *Registry) All() []models.NodeType {
	return append([]models.NodeType(nil), r.types...)
}

// State is the classification state listings are filtered by.
type State interface {
	IsHidden(sourceID string) bool
	ShowHidden() bool
	IsFavorite(nodeTypeID string) bool
	HasNote(nodeTypeID string) bool
	FolderNodes(folderID string) []string
	DisplayName(nodeTypeID, fallback string) string
}

// Filter narrows a listing.
type Filter struct {
	Query         string
	Source        string
	FolderID      string
	FavoritesOnly bool
	// IncludeHidden lists types from hidden sources even when the user has
	// not turned on showing them.
	IncludeHidden bool
}

// Entry is a node type decorated with its classification state.
type Entry struct {
	models.NodeType `yaml:",inline"`
	Label    string `json:"label" yaml:"label"`
	Favorite bool   `json:"favorite" yaml:"favorite"`
	HasNote  bool   `json:"hasNote" yaml:"hasNote"`
	Hidden   bool   `json:"hidden" yaml:"hidden"`
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// List returns the entries matching f, sorted by label.
func (r *Registry) List(state State, f Filter) []Entry {
	query := fold(strings.TrimSpace(f.Query))
	var inFolder map[string]struct{}
	if f.FolderID != "" {
		inFolder = make(map[string]struct{})
		for _, id := range state.FolderNodes(f.FolderID) {
			inFolder[id] = struct{}{}
		}
	}
	showHidden := f.IncludeHidden || state.ShowHidden()

	var out []Entry
	for _, t := range r.types {
		src := t.SourceID()
		hidden := state.IsHidden(src)
		if hidden && !showHidden {
			continue
		}
		if f.Source != "" && NormalizeSource(src) != NormalizeSource(f.Source) {
			continue
		}
		if inFolder != nil {
			if _, ok := inFolder[t.ID]; !ok {
				continue
			}
		}
		fav := state.IsFavorite(t.ID)
		if f.FavoritesOnly && !fav {
			continue
		}
		label := state.DisplayName(t.ID, t.DisplayName)
		if label == "" {
			label = t.ID
		}
		if query != "" && !matches(query, t.ID, t.DisplayName, label, t.Category) {
			continue
		}
		out = append(out, Entry{
			NodeType: t,
			Label:    label,
			Favorite: fav,
			HasNote:  state.HasNote(t.ID),
			Hidden:   hidden,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fold(out[i].Label) < fold(out[j].Label)
	})
	return out
}

func matches(query string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(fold(f), query) {
			return true
		}
	}
	return false
}

// Source summarizes the node types one plugin contributes.
type Source struct {
	ID        string `json:"name" yaml:"name"`
	Title     string `json:"title" yaml:"title"`
	NodeCount int    `json:"node_count" yaml:"node_count"`
	Hidden    bool   `json:"hidden" yaml:"hidden"`
}

// Sources lists plugin sources with their node counts, sorted by id.
func (r *Registry) Sources(state State) []Source {
	counts := make(map[string]int)
	for _, t := range r.types {
		counts[t.SourceID()]++
	}
	out := make([]Source, 0, len(counts))
	for id, n := range counts {
		out = append(out, Source{
			ID:        id,
			Title:     SourceTitle(id),
			NodeCount: n,
			Hidden:    state != nil && state.IsHidden(id),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NormalizeSource maps plugin name variants such as "Easy-Use" and
// "easy_use" to one key.
func NormalizeSource(name string) string {
	return fold(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

// SourceTitle turns a plugin id into a readable title.
func SourceTitle(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
