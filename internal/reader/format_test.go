package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/peadz/internal/testutil"
)

func TestInspect(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("pdf", func(t *testing.T) {
		path := testutil.WritePDF(t, tmpDir, "three.pdf", 3)

		doc, err := Inspect(path)
		require.NoError(t, err)
		assert.Equal(t, 3, doc.PageCount)
		assert.Equal(t, "three.pdf", doc.Title)
		assert.Equal(t, path, doc.Location)
	})

	t.Run("upper case extension", func(t *testing.T) {
		path := testutil.WritePDF(t, tmpDir, "LOUD.PDF", 1)

		doc, err := Inspect(path)
		require.NoError(t, err)
		assert.Equal(t, 1, doc.PageCount)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		_, err := Inspect(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("nonexistent file", func(t *testing.T) {
		_, err := Inspect(filepath.Join(tmpDir, "nonexistent.pdf"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("not really a pdf", func(t *testing.T) {
		path := filepath.Join(tmpDir, "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

		_, err := Inspect(path)
		assert.Error(t, err)
	})
}

func TestPDFFormat(t *testing.T) {
	f := &PDFFormat{}
	assert.Equal(t, "PDF", f.Name())
	assert.Equal(t, []string{".pdf"}, f.Extensions())
}

func TestSupportedFormats(t *testing.T) {
	assert.Contains(t, SupportedFormats(), "PDF (.pdf)")
	assert.Contains(t, Extensions(), ".pdf")

	f, ok := Lookup("book.pdf")
	require.True(t, ok)
	assert.Equal(t, "PDF", f.Name())

	_, ok = Lookup("book.epub")
	assert.False(t, ok)
}
