//go:build gui

package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/peadz/internal/cli"
	"github.com/metcalfc/peadz/internal/reader"
	"github.com/metcalfc/peadz/internal/state"
	"github.com/metcalfc/peadz/internal/testutil"
)

func newEnv(t *testing.T) *cli.Env {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))

	env, err := cli.NewEnv("", &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func waitPage(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case page := <-ch:
		return page
	case <-time.After(5 * time.Second):
		t.Fatal("no page change reported")
		return -1
	}
}

func TestFitzSurface(t *testing.T) {
	doc := testutil.WritePDF(t, t.TempDir(), "doc.pdf", 5)
	env := newEnv(t)

	s := newFitzSurface(env.Logger("test"))
	var _ reader.Surface = s

	pages, err := s.Load(doc)
	require.NoError(t, err)
	assert.Equal(t, 5, pages)

	changes := reader.NewPageChanges(4)
	changes.Attach(s)

	s.GoTo(2)
	assert.Equal(t, 2, waitPage(t, changes.C()))
	assert.Len(t, s.Shown(), 1)

	s.SetBookMode(true)
	s.GoTo(3)
	assert.Equal(t, 3, waitPage(t, changes.C()))
	assert.Len(t, s.Shown(), 2)

	s.GoTo(4)
	assert.Equal(t, 4, waitPage(t, changes.C()))
	assert.Len(t, s.Shown(), 1, "last page of an odd document stands alone")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestFitzSurfaceDropsStalePages(t *testing.T) {
	doc := testutil.WritePDF(t, t.TempDir(), "doc.pdf", 5)
	env := newEnv(t)

	s := newFitzSurface(env.Logger("test"))
	_, err := s.Load(doc)
	require.NoError(t, err)
	defer s.Close()

	var reported []int
	s.OnPageChanged(func(page int) { reported = append(reported, page) })

	s.mu.Lock()
	s.latest = 2
	s.mu.Unlock()

	s.render(1)
	assert.Empty(t, reported, "a page overtaken by a newer request is not reported")
	assert.False(t, s.Wants(1))

	s.render(2)
	assert.Equal(t, []int{2}, reported)
	assert.True(t, s.Wants(2))
}

func TestFitzSurfaceLoadFailure(t *testing.T) {
	env := newEnv(t)
	s := newFitzSurface(env.Logger("test"))
	_, err := s.Load(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}

func TestGUIMarks(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	env := newEnv(t)
	marks, err := guiMarks(a, env)
	require.NoError(t, err)
	assert.IsType(t, &state.JSONStore{}, marks)

	t.Setenv("PEADZ_MARKS_BACKEND", "preferences")
	env = newEnv(t)
	marks, err = guiMarks(a, env)
	require.NoError(t, err)
	require.IsType(t, &state.PrefsStore{}, marks)

	require.NoError(t, marks.Set("k", 4))
	page, ok := marks.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 4, page)
}

func TestFolderOptions(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	env := newEnv(t)
	dir := t.TempDir()
	_, err := env.Catalog.Add(testutil.WritePDF(t, dir, "a.pdf", 1), "Work")
	require.NoError(t, err)
	_, err = env.Catalog.Add(testutil.WritePDF(t, dir, "b.pdf", 1), "Home")
	require.NoError(t, err)

	marks, err := guiMarks(a, env)
	require.NoError(t, err)
	g := newGUI(a, env, marks)

	assert.Equal(t, []string{allLabel, "Home", "Work", newFolderOpt}, g.folderOptions())
	assert.Len(t, g.grid.Objects, 2)

	g.onFolderSelected("Work")
	assert.Equal(t, "Work", g.folder)
	assert.Len(t, g.grid.Objects, 1)

	g.onFolderSelected(allLabel)
	assert.Len(t, g.grid.Objects, 2)
}
