package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"
)

var (
	_ MarkStore = (*JSONStore)(nil)
	_ MarkStore = (*BadgerStore)(nil)
	_ MarkStore = (*PrefsStore)(nil)
)

func TestComputeHash(t *testing.T) {
	// Create temp file with known content
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "report.pdf")
	file2 := filepath.Join(tmpDir, "other.pdf")
	file3 := filepath.Join(tmpDir, "copy", "report.pdf")

	os.MkdirAll(filepath.Dir(file3), 0755)
	os.WriteFile(file1, []byte("%PDF-1.4 first"), 0644)
	os.WriteFile(file2, []byte("%PDF-1.4 second"), 0644)
	os.WriteFile(file3, []byte("%PDF-1.4 first"), 0644) // Same as file1

	hash1, err := ComputeHash(file1)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash2, err := ComputeHash(file2)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash3, err := ComputeHash(file3)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if hash1 != hash3 {
		t.Errorf("Same content should produce same hash: %s != %s", hash1, hash3)
	}
	if hash1 == hash2 {
		t.Errorf("Different content should produce different hash")
	}
	if len(hash1) != 32 {
		t.Errorf("Hash should be 32 chars, got %d", len(hash1))
	}
}

func TestKeyFor(t *testing.T) {
	tmpDir := t.TempDir()
	work := filepath.Join(tmpDir, "work", "report.pdf")
	home := filepath.Join(tmpDir, "home", "report.pdf")
	os.MkdirAll(filepath.Dir(work), 0755)
	os.MkdirAll(filepath.Dir(home), 0755)
	os.WriteFile(work, []byte("work copy"), 0644)
	os.WriteFile(home, []byte("home copy"), 0644)

	if got := Key(work); got != "PDFViewer_LastPage_report.pdf" {
		t.Errorf("Key() = %q", got)
	}

	// Base-name keys collide across directories.
	k1, _ := KeyFor(work, KeyBaseName)
	k2, _ := KeyFor(home, KeyBaseName)
	if k1 != k2 {
		t.Errorf("basename keys should collide: %q != %q", k1, k2)
	}

	// Content keys do not.
	c1, err := KeyFor(work, KeyContent)
	if err != nil {
		t.Fatalf("KeyFor failed: %v", err)
	}
	c2, _ := KeyFor(home, KeyContent)
	if c1 == c2 {
		t.Errorf("content keys should differ for different files")
	}
	if !strings.HasPrefix(c1, KeyPrefix) {
		t.Errorf("content key %q lacks prefix", c1)
	}

	if _, err := KeyFor(filepath.Join(tmpDir, "missing.pdf"), KeyContent); err == nil {
		t.Error("expected error hashing a missing file")
	}
}

func TestParseKeyStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    KeyStrategy
		wantErr bool
	}{
		{"", KeyBaseName, false},
		{"basename", KeyBaseName, false},
		{"content", KeyContent, false},
		{"path", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKeyStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKeyStrategy(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKeyStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// exerciseStore runs the contract every MarkStore must satisfy.
func exerciseStore(t *testing.T, store MarkStore) {
	t.Helper()
	key := Key("/books/report.pdf")

	if _, ok := store.Get(key); ok {
		t.Errorf("Expected no mark for unknown key")
	}
	if pos := Resume(store, key, 10); pos != 0 {
		t.Errorf("Expected resume at 0 without a mark, got %d", pos)
	}

	if err := store.Set(key, 5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if page, ok := store.Get(key); !ok || page != 5 {
		t.Errorf("Expected 5, got %d (ok=%v)", page, ok)
	}

	// Stored page is honoured only when it fits the document.
	if pos := Resume(store, key, 10); pos != 5 {
		t.Errorf("Expected resume at 5, got %d", pos)
	}
	if pos := Resume(store, key, 3); pos != 0 {
		t.Errorf("Expected fallback to 0 for a 3-page document, got %d", pos)
	}
	if pos := Resume(store, key, 6); pos != 5 {
		t.Errorf("Expected resume at last page 5, got %d", pos)
	}

	if err := store.Set(key, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if page, ok := store.Get(key); !ok || page != 0 {
		t.Errorf("Expected explicit page 0, got %d (ok=%v)", page, ok)
	}

	if err := store.Set(key, -1); err != ErrNegativePage {
		t.Errorf("Expected ErrNegativePage, got %v", err)
	}

	if err := store.Clear(key); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := store.Get(key); ok {
		t.Errorf("Expected no mark after clear")
	}
}

func TestJSONStore(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore failed: %v", err)
	}
	exerciseStore(t, store)
}

func TestJSONStorePersistence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	if Dir() != filepath.Join(tmpDir, "peadz") {
		t.Fatalf("Dir() = %q", Dir())
	}

	store1, err := NewJSONStore(Dir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore failed: %v", err)
	}
	store1.Set(Key("report.pdf"), 42)

	// New instance should load persisted data
	store2, err := NewJSONStore(Dir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore failed: %v", err)
	}
	if page, _ := store2.Get(Key("report.pdf")); page != 42 {
		t.Errorf("Expected 42 from persisted state, got %d", page)
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, marksFileName), []byte("[oops"), 0644)

	store, err := NewJSONStore(tmpDir, nil)
	if err != nil {
		t.Fatalf("corrupt marks should not be fatal: %v", err)
	}
	if _, ok := store.Get(Key("report.pdf")); ok {
		t.Errorf("Expected empty store")
	}
}

func TestJSONStoreNullFile(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, marksFileName), []byte("null"), 0644)

	store, err := NewJSONStore(tmpDir, nil)
	if err != nil {
		t.Fatalf("null marks should not be fatal: %v", err)
	}
	if err := store.Set(Key("report.pdf"), 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if page, ok := store.Get(Key("report.pdf")); !ok || page != 1 {
		t.Errorf("Get() = %d, %v, want 1, true", page, ok)
	}
}

func TestBadgerStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "marks")
	store, err := NewBadgerStore(dir, nil)
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	exerciseStore(t, store)

	store.Set(Key("kept.pdf"), 7)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBadgerStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if page, ok := reopened.Get(Key("kept.pdf")); !ok || page != 7 {
		t.Errorf("Expected 7 after reopen, got %d (ok=%v)", page, ok)
	}
}

func TestPrefsStore(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	exerciseStore(t, NewPrefsStore(app.Preferences()))
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := Open(BackendJSON, tmpDir, nil)
	if err != nil {
		t.Fatalf("Open json failed: %v", err)
	}
	if _, ok := store.(*JSONStore); !ok {
		t.Errorf("Expected *JSONStore, got %T", store)
	}

	store, err = Open(BackendBadger, tmpDir, nil)
	if err != nil {
		t.Fatalf("Open badger failed: %v", err)
	}
	store.Close()
	if _, err := os.Stat(filepath.Join(tmpDir, "marks")); err != nil {
		t.Errorf("Expected badger dir: %v", err)
	}

	if _, err := Open(BackendPreferences, tmpDir, nil); err == nil {
		t.Error("Expected preferences backend to be rejected outside the app")
	}
	if _, err := Open("sqlite", tmpDir, nil); err == nil {
		t.Error("Expected unknown backend error")
	}
}
