package catalog

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Entry is one tracked document in the library.
type Entry struct {
	ID          string
	DisplayName string
	Location    string // absolute path, identity for de-duplication
	Folder      string // empty means no folder
}

func newEntry(location, folder string) Entry {
	return Entry{
		ID:          uuid.NewString(),
		DisplayName: filepath.Base(location),
		Location:    location,
		Folder:      folder,
	}
}

// record is the on-disk shape of an Entry.
type record struct {
	ID       string  `json:"id"`
	FileName string  `json:"fileName"`
	FileURL  string  `json:"fileURL"`
	Folder   *string `json:"folder"`
}

func (e Entry) record() record {
	r := record{
		ID:       e.ID,
		FileName: e.DisplayName,
		FileURL:  fileURL(e.Location),
	}
	if e.Folder != "" {
		folder := e.Folder
		r.Folder = &folder
	}
	return r
}

func (r record) entry() Entry {
	e := Entry{
		ID:          r.ID,
		DisplayName: r.FileName,
		Location:    pathFromURL(r.FileURL),
	}
	if r.Folder != nil {
		e.Folder = *r.Folder
	}
	if e.DisplayName == "" {
		e.DisplayName = filepath.Base(e.Location)
	}
	return e
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// pathFromURL accepts file URLs as well as bare paths.
func pathFromURL(s string) string {
	if !strings.HasPrefix(s, "file:") {
		return filepath.Clean(s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return filepath.Clean(strings.TrimPrefix(s, "file://"))
	}
	return filepath.FromSlash(u.Path)
}
