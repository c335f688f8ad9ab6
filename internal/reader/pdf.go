package reader

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFFormat implements Format for PDF files.
type PDFFormat struct{}

func init() {
	// Keep pdfcpu from creating its own config dir under the user's home.
	api.DisableConfigDir()
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) PageCount(filename string) (int, error) {
	n, err := api.PageCountFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read pdf: %w", err)
	}
	return n, nil
}
