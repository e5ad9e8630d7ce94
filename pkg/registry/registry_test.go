package registry

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

const yamlExport = `
nodes:
  - typeId: KSampler
    displayLabel: KSampler
    category: sampling
  - typeId: VAEDecode
    displayLabel: VAE Decode
    category: latent
  - typeId: EasyLoader
    displayLabel: Easy Loader
    category: EasyUse/loaders
    sourceId: comfyui-easy-use
  - typeId: EasyPrompt
    displayLabel: Easy Prompt
    sourceId: comfyui-easy-use
  - typeId: ""
    displayLabel: dropped
`

const jsonExport = `[
  {"typeId": "KSampler", "displayLabel": "KSampler", "category": "sampling"},
  {"typeId": "KSampler", "displayLabel": "K Sampler", "category": "sampling"},
  {"typeId": "Upscale", "displayLabel": "Upscale", "sourceId": "upscalers"}
]`

func newState(t *testing.T) *store.Store {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	return store.New(store.WithLogger(l))
}

func TestLoadYAMLDocument(t *testing.T) {
	r, err := Load(strings.NewReader(yamlExport))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())

	nt, ok := r.Get("EasyLoader")
	require.True(t, ok)
	assert.Equal(t, "comfyui-easy-use", nt.SourceID())

	nt, ok = r.Get("KSampler")
	require.True(t, ok)
	assert.Equal(t, models.CoreSource, nt.SourceID())
}

func TestLoadJSONListReplacesDuplicates(t *testing.T) {
	r, err := Load(strings.NewReader(jsonExport))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	nt, _ := r.Get("KSampler")
	assert.Equal(t, "K Sampler", nt.DisplayName)
}

func TestLoadRejectsScalars(t *testing.T) {
	_, err := Load(strings.NewReader("just text"))
	assert.Error(t, err)

	r, err := Load(strings.NewReader("   "))
	require.NoError(t, err)
	assert.Zero(t, r.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlExport), 0o644))
	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func labels(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Label)
	}
	return out
}

func TestListHonoursHiddenSources(t *testing.T) {
	r, err := Load(strings.NewReader(yamlExport))
	require.NoError(t, err)
	s := newState(t)

	assert.Len(t, r.List(s, Filter{}), 4)

	s.SetHidden([]string{"comfyui-easy-use"}, true)
	assert.Equal(t, []string{"KSampler", "VAE Decode"}, labels(r.List(s, Filter{})))

	all := r.List(s, Filter{IncludeHidden: true})
	require.Len(t, all, 4)
	for _, e := range all {
		assert.Equal(t, e.SourceID() == "comfyui-easy-use", e.Hidden)
	}

	s.SetShowHidden(true)
	assert.Len(t, r.List(s, Filter{}), 4)

	s.SetShowHidden(false)
	s.SetHidden([]string{"comfyui-easy-use"}, false)
	assert.Len(t, r.List(s, Filter{}), 4)
}

func TestListFilters(t *testing.T) {
	r, err := Load(strings.NewReader(yamlExport))
	require.NoError(t, err)
	s := newState(t)

	folder, err := s.CreateFolder("Loaders", "")
	require.NoError(t, err)
	_, err = s.AddNodeToFolder("EasyLoader", folder)
	require.NoError(t, err)
	s.ToggleFavorite("VAEDecode")
	require.NoError(t, s.SetCustomName("KSampler", "My Sampler"))
	require.NoError(t, s.SetNote("KSampler", "tuned"))

	assert.Equal(t, []string{"Easy Loader"}, labels(r.List(s, Filter{FolderID: folder})))
	assert.Equal(t, []string{"VAE Decode"}, labels(r.List(s, Filter{FavoritesOnly: true})))
	assert.Equal(t, []string{"Easy Loader", "Easy Prompt"}, labels(r.List(s, Filter{Source: "ComfyUI_Easy_Use"})))
	assert.Equal(t, []string{"My Sampler"}, labels(r.List(s, Filter{Query: "my sAMPLER"})))
	assert.Equal(t, []string{"Easy Loader"}, labels(r.List(s, Filter{Query: "LOADERS"})))

	entries := r.List(s, Filter{Query: "ksampler"})
	require.Len(t, entries, 1)
	assert.True(t, entries[0].HasNote)
	assert.False(t, entries[0].Favorite)
}

func TestSources(t *testing.T) {
	r, err := Load(strings.NewReader(yamlExport))
	require.NoError(t, err)
	s := newState(t)
	s.SetHidden([]string{"comfyui-easy-use"}, true)

	sources := r.Sources(s)
	require.Len(t, sources, 2)
	assert.Equal(t, Source{ID: "comfyui-easy-use", Title: "Comfyui Easy Use", NodeCount: 2, Hidden: true}, sources[0])
	assert.Equal(t, Source{ID: "core", Title: "Core", NodeCount: 2}, sources[1])
}

func TestNormalizeSource(t *testing.T) {
	assert.Equal(t, NormalizeSource("Easy-Use"), NormalizeSource("easy_use"))
	assert.NotEqual(t, NormalizeSource("easy"), NormalizeSource("easy_use"))
}
