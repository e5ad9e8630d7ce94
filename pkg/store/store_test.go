package store

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-nodemanager/pkg/events"
	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("f%d", n)
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *[]events.Event) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := events.NewBus(logger)
	var got []events.Event
	bus.Subscribe(func(e events.Event) { got = append(got, e) })

	base := []Option{WithBus(bus), WithLogger(logger), WithIDGenerator(seqIDs())}
	return New(append(base, opts...)...), &got
}

func TestCreateFolder(t *testing.T) {
	s, got := newTestStore(t)

	a, err := s.CreateFolder("  Sampling  ", "")
	require.NoError(t, err)
	b, err := s.CreateFolder("Loaders", "")
	require.NoError(t, err)
	child, err := s.CreateFolder("Advanced", a)
	require.NoError(t, err)

	fa, _ := s.Folder(a)
	fb, _ := s.Folder(b)
	fc, _ := s.Folder(child)

	assert.Equal(t, "Sampling", fa.Name)
	assert.Equal(t, 0, fa.Order)
	assert.Equal(t, 1, fb.Order)
	assert.Equal(t, 1, fa.Level)
	assert.Equal(t, 2, fc.Level)
	assert.Equal(t, a, fc.Parent)
	assert.Equal(t, 0, fc.Order)
	assert.True(t, fc.Expanded)
	assert.Len(t, *got, 3)
}

func TestCreateFolderOrderFollowsMaxSibling(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", "")
	_, _ = s.CreateFolder("C", "")
	_, err := s.DeleteFolders([]string{a, b})
	require.NoError(t, err)

	d, err := s.CreateFolder("D", "")
	require.NoError(t, err)
	f, _ := s.Folder(d)
	assert.Equal(t, 3, f.Order, "order is max sibling order plus one")
}

func TestCreateFolderValidation(t *testing.T) {
	s, got := newTestStore(t)

	_, err := s.CreateFolder("   ", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = s.CreateFolder("x", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, *got)
}

func TestCreateFolderDisambiguatesSiblingNames(t *testing.T) {
	s, _ := newTestStore(t)

	first, _ := s.CreateFolder("Math", "")
	second, _ := s.CreateFolder("Math", "")
	third, _ := s.CreateFolder("Math", "")
	nested, _ := s.CreateFolder("Math", first)

	names := func(id string) string { f, _ := s.Folder(id); return f.Name }
	assert.Equal(t, "Math", names(first))
	assert.Equal(t, "Math (2)", names(second))
	assert.Equal(t, "Math (3)", names(third))
	assert.Equal(t, "Math", names(nested), "names only collide among siblings")
}

func TestCreateFolderMaxDepth(t *testing.T) {
	s, _ := newTestStore(t)
	l1, _ := s.CreateFolder("1", "")
	l2, _ := s.CreateFolder("2", l1)
	l3, err := s.CreateFolder("3", l2)
	require.NoError(t, err)

	_, err = s.CreateFolder("4", l3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxDepth))
	assert.True(t, errors.Is(err, ErrValidation))

	unlimited, _ := newTestStore(t, WithMaxDepth(0))
	p := ""
	for i := 0; i < 6; i++ {
		p, err = unlimited.CreateFolder("deep", p)
		require.NoError(t, err)
	}
}

func TestCreateFolderForGroup(t *testing.T) {
	s, _ := newTestStore(t)
	root, _ := s.CreateFolder("Upscale", "")
	_, _ = s.CreateFolder("Upscale (2)", root)

	id, err := s.CreateFolderForGroup("Upscale")
	require.NoError(t, err)
	f, _ := s.Folder(id)
	assert.Equal(t, "Upscale (3)", f.Name, "group folders are unique across the whole tree")
	assert.True(t, f.IsRoot())
	assert.Equal(t, 1, f.Order)

	blank, err := s.CreateFolderForGroup("   ")
	require.NoError(t, err)
	fb, _ := s.Folder(blank)
	assert.Equal(t, DefaultGroupFolderName, fb.Name)
}

func TestRenameFolder(t *testing.T) {
	s, got := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	_, _ = s.CreateFolder("B", "")
	*got = nil

	require.NoError(t, s.RenameFolder(a, "A"))
	assert.Empty(t, *got, "unchanged name is a no-op")

	require.NoError(t, s.RenameFolder(a, " Renamed "))
	f, _ := s.Folder(a)
	assert.Equal(t, "Renamed", f.Name)
	assert.Len(t, *got, 1)

	err := s.RenameFolder("nope", "x")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.RenameFolder(a, "B")
	assert.True(t, errors.Is(err, ErrValidation))

	err = s.RenameFolder(a, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDeleteFoldersRecursive(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", a)
	c, _ := s.CreateFolder("C", b)
	keep, _ := s.CreateFolder("Keep", "")

	_, err := s.AddNodeToFolder("X", b)
	require.NoError(t, err)
	_, err = s.AddNodeToFolder("Y", c)
	require.NoError(t, err)
	_, err = s.AddNodeToFolder("X", keep)
	require.NoError(t, err)

	removed, err := s.DeleteFolders([]string{a})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, c}, removed)

	snap := s.Snapshot()
	assert.NotContains(t, snap.Folders, a)
	assert.NotContains(t, snap.Folders, b)
	assert.NotContains(t, snap.Folders, c)
	assert.NotContains(t, snap.FolderNodes, b)
	assert.NotContains(t, snap.FolderNodes, c)
	assert.Equal(t, []string{"X"}, snap.FolderNodes[keep])
}

func TestDeleteFoldersAllOrNothing(t *testing.T) {
	s, got := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	*got = nil

	_, err := s.DeleteFolders([]string{a, "ghost"})
	require.Error(t, err)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"ghost"}, nf.IDs)

	_, ok := s.Folder(a)
	assert.True(t, ok, "no folder is removed when any id is unknown")
	assert.Empty(t, *got)
}

func TestDeleteFoldersOverlappingIDs(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", a)

	removed, err := s.DeleteFolders([]string{a, b, a})
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Empty(t, s.Folders())
}

func TestMoveFolder(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", "")
	c, _ := s.CreateFolder("C", "")
	child, _ := s.CreateFolder("Child", c)

	// Move C (with its child) under A.
	require.NoError(t, s.MoveFolder(c, a, 0))
	fc, _ := s.Folder(c)
	fchild, _ := s.Folder(child)
	assert.Equal(t, a, fc.Parent)
	assert.Equal(t, 2, fc.Level)
	assert.Equal(t, 3, fchild.Level)

	roots := s.Children("")
	require.Len(t, roots, 2)
	assert.Equal(t, a, roots[0].ID)
	assert.Equal(t, 0, roots[0].Order)
	assert.Equal(t, b, roots[1].ID)
	assert.Equal(t, 1, roots[1].Order)

	// Move B to the front of the root list.
	require.NoError(t, s.MoveFolder(b, "", 0))
	roots = s.Children("")
	assert.Equal(t, []string{b, a}, []string{roots[0].ID, roots[1].ID})

	// Back to root at an out of range position.
	require.NoError(t, s.MoveFolder(c, "", 99))
	roots = s.Children("")
	require.Len(t, roots, 3)
	assert.Equal(t, c, roots[2].ID)
	assert.Equal(t, 2, roots[2].Order)
	fchild, _ = s.Folder(child)
	assert.Equal(t, 2, fchild.Level)
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	s, got := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", a)
	c, _ := s.CreateFolder("C", b)
	*got = nil

	for _, target := range []string{a, b, c} {
		err := s.MoveFolder(a, target, 0)
		require.Error(t, err, "moving into %s", target)
		assert.True(t, errors.Is(err, ErrCycle))
	}
	fa, _ := s.Folder(a)
	assert.True(t, fa.IsRoot())
	assert.Empty(t, *got)
}

func TestMoveFolderDepthLimit(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	b, _ := s.CreateFolder("B", a)
	x, _ := s.CreateFolder("X", "")
	_, _ = s.CreateFolder("Y", x)

	err := s.MoveFolder(x, b, 0)
	assert.True(t, errors.Is(err, ErrMaxDepth))

	require.NoError(t, s.MoveFolder(x, a, 0))
}

func TestMoveFolderNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")
	assert.True(t, errors.Is(s.MoveFolder("ghost", "", 0), ErrNotFound))
	assert.True(t, errors.Is(s.MoveFolder(a, "ghost", 0), ErrNotFound))
}

func TestToggleFolderExpanded(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("A", "")

	expanded, err := s.ToggleFolderExpanded(a)
	require.NoError(t, err)
	assert.False(t, expanded)
	expanded, err = s.ToggleFolderExpanded(a)
	require.NoError(t, err)
	assert.True(t, expanded)

	_, err = s.ToggleFolderExpanded("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindFolder(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateFolder("Math", "")
	_, _ = s.CreateFolder("Dup", "")
	_, _ = s.CreateFolder("Dup", a)

	f, err := s.FindFolder("Math")
	require.NoError(t, err)
	assert.Equal(t, a, f.ID)

	f, err = s.FindFolder(a)
	require.NoError(t, err)
	assert.Equal(t, "Math", f.Name)

	_, err = s.FindFolder("Dup")
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = s.FindFolder("none")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReplacePublishesReload(t *testing.T) {
	s, got := newTestStore(t)
	cfg := models.NewConfig()
	cfg.Folders["x"] = &models.Folder{Name: "X", Level: 1}
	cfg.FolderNodes["stale"] = []string{"A"}

	s.Replace(cfg, "file")

	snap := s.Snapshot()
	assert.Contains(t, snap.Folders, "x")
	assert.NotContains(t, snap.FolderNodes, "stale")
	require.Len(t, *got, 1)
	assert.Equal(t, events.ConfigReloaded{Source: "file"}, (*got)[0])

	cfg.Folders["x"].Name = "mutated"
	f, _ := s.Folder("x")
	assert.Equal(t, "X", f.Name, "store keeps its own copy")
}

func TestReplaceRepairsCyclicFolders(t *testing.T) {
	s, _ := newTestStore(t)
	cfg := models.NewConfig()
	cfg.Folders["a"] = &models.Folder{Name: "A", Parent: "b", Level: 2}
	cfg.Folders["b"] = &models.Folder{Name: "B", Parent: "a", Level: 2}
	cfg.Folders["c"] = &models.Folder{Name: "C", Parent: "a", Level: 7}
	cfg.Folders["lost"] = &models.Folder{Name: "Lost", Parent: "gone", Level: 2}

	s.Replace(cfg, "api")

	a, _ := s.Folder("a")
	b, _ := s.Folder("b")
	assert.True(t, a.IsRoot() != b.IsRoot(), "exactly one folder of the cycle becomes a root")
	lost, _ := s.Folder("lost")
	assert.True(t, lost.IsRoot())
	assert.Equal(t, 1, lost.Level)

	require.NoError(t, s.MoveFolder("a", "", 0))
	require.NoError(t, s.MoveFolder("b", "", 1))
	a, _ = s.Folder("a")
	b, _ = s.Folder("b")
	c, _ := s.Folder("c")
	assert.Equal(t, 1, a.Level)
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, "a", c.Parent)
	assert.Equal(t, 2, c.Level)
}

func TestWithConfigSeedsState(t *testing.T) {
	cfg := models.NewConfig()
	cfg.Favorites = []string{"KSampler"}
	s := New(WithConfig(cfg))
	assert.True(t, s.IsFavorite("KSampler"))
	assert.NotNil(t, s.Bus())
	assert.Equal(t, DefaultMaxDepth, s.MaxDepth())
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage("create folder", &ValidationError{Field: "name", Reason: "folder name is required"}), "folder name is required")
	assert.Contains(t, UserMessage("rename folder", &NotFoundError{Kind: "folder", IDs: []string{"f1"}}), "may have been deleted")
	assert.Contains(t, UserMessage("adding to folder", &PersistenceError{Op: "save", Err: errors.New("disk full")}), "will be saved with the next edit")
	assert.Equal(t, "Could not do it.", UserMessage("do it", errors.New("x")))
}
