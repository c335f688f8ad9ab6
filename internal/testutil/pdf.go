// Package testutil builds fixture documents for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF writes a PDF with the given number of pages to dir/name and
// returns its path.
func WritePDF(t testing.TB, dir, name string, pages int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(name, true)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 14)
		pdf.Cell(40, 10, fmt.Sprintf("%s page %d", name, i+1))
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
