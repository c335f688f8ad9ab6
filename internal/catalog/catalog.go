// Package catalog tracks the documents in the library, the folders that
// group them, and the current selection. The entry list is persisted as a
// single JSON document that is rewritten on every mutation.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	// FileName is the catalog document inside the data dir.
	FileName = "library.json"

	// AllFolders is the List filter that matches every entry.
	AllFolders = ""
)

// Catalog is the persisted library of documents.
type Catalog struct {
	path     string
	entries  []Entry
	folders  []string
	selected string
	log      *logrus.Entry
	mu       sync.RWMutex

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Dir returns XDG_DATA_HOME/peadz or ~/.local/share/peadz
func Dir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "peadz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "peadz")
}

// Open loads the catalog stored at path. A missing, unreadable or corrupt
// file yields an empty catalog; the problem is logged, never returned.
func Open(path string, log *logrus.Entry) *Catalog {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	c := &Catalog{
		path: path,
		log:  log.WithField("component", "catalog"),
		subs: make(map[int]func(Change)),
	}
	c.load()
	return c
}

// Path is the file the catalog is saved to.
func (c *Catalog) Path() string { return c.path }

// Add tracks the document at location under folder. Adding a location that
// is already tracked returns the existing entry and ErrDuplicateEntry. A
// failed save is returned as *PersistError with the entry still added.
func (c *Catalog) Add(location, folder string) (Entry, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return Entry{}, fmt.Errorf("resolve %s: %w", location, err)
	}
	folder = strings.TrimSpace(folder)

	e, added, err := c.add(abs, folder)
	if added {
		c.notify(Change{Kind: EntryAdded, Entry: e, Folder: e.Folder})
	}
	return e, err
}

func (c *Catalog) add(location, folder string) (Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOfLocation(location); i >= 0 {
		return c.entries[i], false, ErrDuplicateEntry
	}
	if err := checkReadable(location); err != nil {
		return Entry{}, false, err
	}

	e := newEntry(location, folder)
	c.entries = append(c.entries, e)
	if folder != "" && !slices.Contains(c.folders, folder) {
		c.folders = append(c.folders, folder)
		sort.Strings(c.folders)
	}
	return e, true, c.save()
}

// DeleteEntry removes the entry with the given id and recomputes the folder
// set from what remains. Unknown ids are ignored.
func (c *Catalog) DeleteEntry(id string) error {
	c.mu.Lock()
	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	removed := c.entries[i]
	c.entries = slices.Delete(c.entries, i, i+1)
	c.folders = deriveFolders(c.entries)

	changes := []Change{{Kind: EntryRemoved, Entry: removed, Folder: removed.Folder}}
	if c.selected == id {
		c.selected = ""
		changes = append(changes, Change{Kind: SelectionChanged})
	}
	err := c.save()
	c.mu.Unlock()

	c.notify(changes...)
	return err
}

// DeleteFolder removes the folder and every entry filed under it. The empty
// name means "no folder" and never matches.
func (c *Catalog) DeleteFolder(name string) error {
	if name == "" {
		return nil
	}

	c.mu.Lock()
	tracked := slices.Contains(c.folders, name)
	before := len(c.entries)
	selectionLost := false
	c.entries = slices.DeleteFunc(c.entries, func(e Entry) bool {
		if e.Folder != name {
			return false
		}
		if e.ID == c.selected {
			selectionLost = true
		}
		return true
	})
	if !tracked && len(c.entries) == before {
		c.mu.Unlock()
		return nil
	}
	c.folders = slices.DeleteFunc(c.folders, func(f string) bool { return f == name })

	changes := []Change{{Kind: FolderRemoved, Folder: name}}
	if selectionLost {
		c.selected = ""
		changes = append(changes, Change{Kind: SelectionChanged})
	}
	err := c.save()
	c.mu.Unlock()

	c.notify(changes...)
	return err
}

// CreateFolder adds an empty folder. It lives in memory only: folders are
// rebuilt from entries on load, so a folder that never receives an entry
// does not survive a restart.
func (c *Catalog) CreateFolder(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyFolderName
	}

	c.mu.Lock()
	if slices.Contains(c.folders, name) {
		c.mu.Unlock()
		return nil
	}
	c.folders = append(c.folders, name)
	sort.Strings(c.folders)
	c.mu.Unlock()

	c.notify(Change{Kind: FolderCreated, Folder: name})
	return nil
}

// List returns entries in insertion order. AllFolders returns everything,
// including entries without a folder.
func (c *Catalog) List(folder string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if folder == AllFolders || e.Folder == folder {
			out = append(out, e)
		}
	}
	return out
}

// Folders returns the sorted folder names.
func (c *Catalog) Folders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.folders)
}

// Get returns the entry with id.
func (c *Catalog) Get(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Select marks the entry with id as selected. Unknown ids return false and
// leave the selection alone. Selection is never persisted.
func (c *Catalog) Select(id string) bool {
	c.mu.Lock()
	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	e := c.entries[i]
	c.selected = id
	c.mu.Unlock()

	c.notify(Change{Kind: SelectionChanged, Entry: e, Folder: e.Folder})
	return true
}

// Deselect clears the selection.
func (c *Catalog) Deselect() {
	c.mu.Lock()
	had := c.selected != ""
	c.selected = ""
	c.mu.Unlock()

	if had {
		c.notify(Change{Kind: SelectionChanged})
	}
}

// Selected returns the selected entry, if any.
func (c *Catalog) Selected() (Entry, bool) {
	c.mu.RLock()
	id := c.selected
	c.mu.RUnlock()
	if id == "" {
		return Entry{}, false
	}
	return c.Get(id)
}

func (c *Catalog) indexOfLocation(location string) int {
	return slices.IndexFunc(c.entries, func(e Entry) bool { return e.Location == location })
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return nil
}

// deriveFolders returns the sorted distinct non-empty folders of entries.
func deriveFolders(entries []Entry) []string {
	seen := make(map[string]bool)
	folders := []string{}
	for _, e := range entries {
		if e.Folder != "" && !seen[e.Folder] {
			seen[e.Folder] = true
			folders = append(folders, e.Folder)
		}
	}
	sort.Strings(folders)
	return folders
}

func (c *Catalog) load() {
	c.entries = nil
	c.folders = []string{}

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		// Non-fatal - start with an empty library
		c.log.WithError(err).WithField("path", c.path).Debug("catalog unreadable")
		return
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		c.log.WithError(err).WithField("path", c.path).Warn("catalog is corrupt, starting empty")
		return
	}

	c.entries = make([]Entry, 0, len(records))
	for _, r := range records {
		c.entries = append(c.entries, r.entry())
	}
	c.folders = deriveFolders(c.entries)
}

// save must be called with mu held.
func (c *Catalog) save() error {
	records := make([]record, 0, len(c.entries))
	for _, e := range c.entries {
		records = append(records, e.record())
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return c.saveFailed("encode", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return c.saveFailed("mkdir", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return c.saveFailed("write", err)
	}
	return nil
}

func (c *Catalog) saveFailed(op string, err error) error {
	c.log.WithError(err).WithFields(logrus.Fields{
		"op":   op,
		"path": c.path,
	}).Error("failed to save catalog")
	return &PersistError{Op: op, Path: c.path, Err: err}
}
