package models

import "encoding/json"

// Folder is a user-defined classification container for node types.
// Parent is empty for root folders.
type Folder struct {
	ID       string `json:"-" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Parent   string `json:"parent" yaml:"parent,omitempty"`
	Level    int    `json:"level" yaml:"level"`
	Order    int    `json:"order" yaml:"order"`
	Expanded bool   `json:"expanded" yaml:"expanded"`
}

// IsRoot reports whether the folder has no parent.
func (f *Folder) IsRoot() bool {
	return f.Parent == ""
}

// folderRecord is the persisted shape; root folders store a null parent.
type folderRecord struct {
	Name     string  `json:"name"`
	Parent   *string `json:"parent"`
	Level    int     `json:"level"`
	Order    int     `json:"order"`
	Expanded bool    `json:"expanded"`
}

func (f Folder) MarshalJSON() ([]byte, error) {
	rec := folderRecord{
		Name:     f.Name,
		Level:    f.Level,
		Order:    f.Order,
		Expanded: f.Expanded,
	}
	if f.Parent != "" {
		parent := f.Parent
		rec.Parent = &parent
	}
	return json.Marshal(rec)
}

func (f *Folder) UnmarshalJSON(data []byte) error {
	rec := folderRecord{Expanded: true}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	f.Name = rec.Name
	f.Level = rec.Level
	f.Order = rec.Order
	f.Expanded = rec.Expanded
	f.Parent = ""
	if rec.Parent != nil {
		f.Parent = *rec.Parent
	}
	return nil
}
