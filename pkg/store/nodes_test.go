package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
)

func TestAddNodeToFolderIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	f, _ := s.CreateFolder("A", "")

	for i := 0; i < 5; i++ {
		_, err := s.AddNodeToFolder("X", f)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"X"}, s.FolderNodes(f))
}

func TestAddNodesToFolderCounts(t *testing.T) {
	s, got := newTestStore(t)
	f, _ := s.CreateFolder("A", "")
	_, _ = s.AddNodeToFolder("X", f)
	*got = nil

	res, err := s.AddNodesToFolder([]string{"X", "Y", "Z", "Y", " "}, f)
	require.NoError(t, err)
	assert.Equal(t, AddResult{Added: 2, Skipped: 1}, res)
	assert.Equal(t, []string{"X", "Y", "Z"}, s.FolderNodes(f))

	require.Len(t, *got, 1)
	assert.Equal(t, events.MembershipChanged{FolderID: f, NodeTypeIDs: []string{"Y", "Z"}, Added: true}, (*got)[0])

	res, err = s.AddNodesToFolder([]string{"X"}, f)
	require.NoError(t, err)
	assert.Equal(t, AddResult{Skipped: 1}, res)
	assert.Len(t, *got, 1, "no event when nothing changed")
}

func TestAddNodesToFolderErrors(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddNodesToFolder([]string{"X"}, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	f, _ := s.CreateFolder("A", "")
	_, err = s.AddNodesToFolder(nil, f)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNodeInManyFolders(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", "")
	_, _ = s.AddNodeToFolder("X", a)
	_, _ = s.AddNodeToFolder("X", b)

	assert.ElementsMatch(t, []string{a, b}, s.FoldersOf("X"))
}

func TestRemoveNodesFromFolder(t *testing.T) {
	s, _ := newTestStore(t)
	f, _ := s.CreateFolder("A", "")
	_, _ = s.AddNodesToFolder([]string{"X", "Y"}, f)

	n, err := s.RemoveNodesFromFolder([]string{"X", "missing"}, f)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Y"}, s.FolderNodes(f))

	n, err = s.RemoveNodesFromFolder([]string{"X"}, f)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.RemoveNodesFromFolder([]string{"Y"}, f)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, s.Snapshot().FolderNodes, f)

	_, err = s.RemoveNodesFromFolder([]string{"Y"}, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestToggleFavoriteOddCount(t *testing.T) {
	s, _ := newTestStore(t)

	for _, want := range []bool{true, false, true} {
		fav, err := s.ToggleFavorite("X")
		require.NoError(t, err)
		assert.Equal(t, want, fav)
	}
	assert.True(t, s.IsFavorite("X"))
	assert.Equal(t, []string{"X"}, s.Favorites())
}

func TestBlankNodeTypeIDsAreRejected(t *testing.T) {
	s, got := newTestStore(t)

	_, err := s.ToggleFavorite("   ")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(s.SetNote(" ", "text"), ErrValidation))
	assert.True(t, errors.Is(s.SetCustomName("", "Label"), ErrValidation))
	assert.Zero(t, s.BatchFavorite([]string{"", "  "}))
	assert.Empty(t, s.Favorites())
	assert.Empty(t, *got)

	fav, err := s.ToggleFavorite("  KSampler ")
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []string{"KSampler"}, s.Favorites())
	require.NoError(t, s.SetNote(" KSampler", "seed"))
	assert.True(t, s.HasNote("KSampler"))
}

func TestBatchFavorite(t *testing.T) {
	s, got := newTestStore(t)
	s.ToggleFavorite("A")
	*got = nil

	assert.Equal(t, 2, s.BatchFavorite([]string{"A", "B", "C", "B"}))
	assert.Equal(t, 0, s.BatchFavorite([]string{"A", "B"}))
	assert.Equal(t, []string{"A", "B", "C"}, s.Favorites())
	assert.Len(t, *got, 1)

	assert.Equal(t, 2, s.BatchUnfavorite([]string{"A", "C", "Z"}))
	assert.Equal(t, []string{"B"}, s.Favorites())
}

func TestSetNote(t *testing.T) {
	s, got := newTestStore(t)

	require.NoError(t, s.SetNote("X", "  use with care  "))
	n, ok := s.Note("X")
	require.True(t, ok)
	assert.Equal(t, "use with care", n)

	require.NoError(t, s.SetNote("X", "   "))
	_, ok = s.Note("X")
	assert.False(t, ok, "whitespace-only note removes the entry")
	assert.NotContains(t, s.Snapshot().Notes, "X")
	assert.False(t, s.HasNote("X"))

	require.NoError(t, s.SetNote("Y", ""))
	assert.Len(t, *got, 2, "removing an absent note publishes nothing")

	assert.True(t, errors.Is(s.SetNote("", "x"), ErrValidation))
}

func TestCustomNames(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.SetCustomName("KSampler", " My Sampler "))
	assert.Equal(t, "My Sampler", s.DisplayName("KSampler", "KSampler"))

	assert.True(t, s.ClearCustomName("KSampler"))
	assert.False(t, s.ClearCustomName("KSampler"))
	assert.Equal(t, "KSampler (Advanced)", s.DisplayName("KSampler", "KSampler (Advanced)"))

	require.NoError(t, s.SetCustomName("VAE", "Decoder"))
	require.NoError(t, s.SetCustomName("VAE", "  "))
	_, ok := s.CustomName("VAE")
	assert.False(t, ok, "blank name clears the override")
}

func TestSetHiddenRoundTrip(t *testing.T) {
	s, got := newTestStore(t)
	before := s.Snapshot().HiddenPlugins

	assert.Equal(t, 2, s.SetHidden([]string{"impact-pack", "was-suite"}, true))
	assert.Equal(t, 0, s.SetHidden([]string{"impact-pack"}, true))
	assert.True(t, s.IsHidden("impact-pack"))
	assert.Equal(t, []string{"impact-pack", "was-suite"}, s.Hidden())

	assert.Equal(t, 2, s.SetHidden([]string{"impact-pack", "was-suite"}, false))
	assert.Equal(t, before, s.Snapshot().HiddenPlugins)
	assert.Len(t, *got, 2)
}

func TestShowHidden(t *testing.T) {
	s, got := newTestStore(t)
	s.SetShowHidden(true)
	s.SetShowHidden(true)
	assert.True(t, s.ShowHidden())
	assert.Len(t, *got, 1)
}

func TestSnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	s.ToggleFavorite("X")
	snap := s.Snapshot()
	snap.Favorites[0] = "Y"
	assert.True(t, s.IsFavorite("X"))
}

func TestFolderDeletionScenario(t *testing.T) {
	s, _ := newTestStore(t)
	a, err := s.CreateFolder("A", "")
	require.NoError(t, err)
	b, err := s.CreateFolder("B", a)
	require.NoError(t, err)
	_, err = s.AddNodeToFolder("X", b)
	require.NoError(t, err)

	_, err = s.DeleteFolders([]string{a})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.NotContains(t, snap.Folders, a)
	assert.NotContains(t, snap.Folders, b)
	assert.NotContains(t, snap.FolderNodes, b)
}
