package models

import "sort"

// Config is the persisted classification state. The JSON shape is shared by
// every persistence backend and by the config server.
type Config struct {
	Folders           map[string]*Folder     `json:"folders"`
	FolderNodes       map[string][]string    `json:"folderNodes"`
	Favorites         []string               `json:"favorites"`
	Notes             map[string]string      `json:"notes"`
	NodeCustomNames   map[string]string      `json:"nodeCustomNames"`
	HiddenPlugins     []string               `json:"hiddenPlugins"`
	ShowHiddenPlugins bool                   `json:"showHiddenPlugins"`
	Settings          map[string]interface{} `json:"settings"`
}

// NewConfig returns an empty config with every section initialized.
func NewConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills missing sections, copies map keys into folder IDs, repairs
// the folder forest and drops membership entries that point at unknown
// folders. Folders whose parent is missing, or that sit on a parent cycle,
// become root folders; levels are then recomputed from the roots down.
func (c *Config) Normalize() {
	if c.Folders == nil {
		c.Folders = make(map[string]*Folder)
	}
	if c.FolderNodes == nil {
		c.FolderNodes = make(map[string][]string)
	}
	if c.Favorites == nil {
		c.Favorites = []string{}
	}
	if c.Notes == nil {
		c.Notes = make(map[string]string)
	}
	if c.NodeCustomNames == nil {
		c.NodeCustomNames = make(map[string]string)
	}
	if c.HiddenPlugins == nil {
		c.HiddenPlugins = []string{}
	}
	if c.Settings == nil {
		c.Settings = make(map[string]interface{})
	}

	for id, f := range c.Folders {
		if f == nil {
			delete(c.Folders, id)
			continue
		}
		f.ID = id
	}
	c.repairForest()
	for id := range c.FolderNodes {
		if _, ok := c.Folders[id]; !ok {
			delete(c.FolderNodes, id)
		}
	}
}

func (c *Config) repairForest() {
	ids := make([]string, 0, len(c.Folders))
	for id, f := range c.Folders {
		if f.Parent != "" {
			if _, ok := c.Folders[f.Parent]; !ok {
				f.Parent = ""
			}
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Walk each parent chain; the first edge that leads back onto the chain
	// is cut, which breaks that cycle.
	for _, id := range ids {
		onChain := map[string]struct{}{id: {}}
		for cur := id; c.Folders[cur].Parent != ""; {
			next := c.Folders[cur].Parent
			if _, seen := onChain[next]; seen {
				c.Folders[cur].Parent = ""
				break
			}
			onChain[next] = struct{}{}
			cur = next
		}
	}

	children := make(map[string][]string, len(c.Folders))
	for _, id := range ids {
		parent := c.Folders[id].Parent
		children[parent] = append(children[parent], id)
	}
	queue := append([]string(nil), children[""]...)
	for _, id := range queue {
		c.Folders[id].Level = 1
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			c.Folders[child].Level = c.Folders[id].Level + 1
			queue = append(queue, child)
		}
	}
}

// Clone returns a deep copy. Settings values are copied shallowly.
func (c *Config) Clone() *Config {
	out := &Config{
		Folders:           make(map[string]*Folder, len(c.Folders)),
		FolderNodes:       make(map[string][]string, len(c.FolderNodes)),
		Favorites:         append([]string{}, c.Favorites...),
		Notes:             make(map[string]string, len(c.Notes)),
		NodeCustomNames:   make(map[string]string, len(c.NodeCustomNames)),
		HiddenPlugins:     append([]string{}, c.HiddenPlugins...),
		ShowHiddenPlugins: c.ShowHiddenPlugins,
		Settings:          make(map[string]interface{}, len(c.Settings)),
	}
	for id, f := range c.Folders {
		cp := *f
		out.Folders[id] = &cp
	}
	for id, nodes := range c.FolderNodes {
		out.FolderNodes[id] = append([]string{}, nodes...)
	}
	for k, v := range c.Notes {
		out.Notes[k] = v
	}
	for k, v := range c.NodeCustomNames {
		out.NodeCustomNames[k] = v
	}
	for k, v := range c.Settings {
		out.Settings[k] = v
	}
	return out
}

// SortedFolderIDs returns folder IDs ordered by level, then order, then name.
func (c *Config) SortedFolderIDs() []string {
	ids := make([]string, 0, len(c.Folders))
	for id := range c.Folders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := c.Folders[ids[i]], c.Folders[ids[j]]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	return ids
}
