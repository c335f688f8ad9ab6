package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	c, dir := newTestCatalog(t)

	var got []ChangeKind
	cancel := c.Subscribe(func(ch Change) {
		got = append(got, ch.Kind)
		// Observers may read the catalog without deadlocking.
		_ = c.List(AllFolders)
	})

	a, err := c.Add(touch(t, dir, "a.pdf"), "A")
	require.NoError(t, err)
	_, _ = c.Add(touch(t, dir, "a.pdf"), "A") // duplicate, no event
	require.NoError(t, c.CreateFolder("Empty"))
	require.NoError(t, c.DeleteFolder("Empty"))
	require.True(t, c.Select(a.ID))
	require.NoError(t, c.DeleteEntry(a.ID))

	assert.Equal(t, []ChangeKind{
		EntryAdded,
		FolderCreated,
		FolderRemoved,
		SelectionChanged,
		EntryRemoved,
		SelectionChanged,
	}, got)

	cancel()
	_, _ = c.Add(touch(t, dir, "b.pdf"), "")
	assert.Len(t, got, 6)
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "entry-added", EntryAdded.String())
	assert.Equal(t, "folder-removed", FolderRemoved.String())
	assert.Equal(t, "unknown", ChangeKind(42).String())
}
