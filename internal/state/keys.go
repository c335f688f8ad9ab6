package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// KeyPrefix starts every mark key.
	KeyPrefix = "PDFViewer_LastPage_"

	hashBytes = 8192 // First 8KB for content hash
)

// KeyStrategy selects how a document is turned into a mark key.
type KeyStrategy string

const (
	// KeyBaseName keys by file name. Two files with the same name in
	// different directories share a mark.
	KeyBaseName KeyStrategy = "basename"
	// KeyContent keys by a hash of the file's first bytes.
	KeyContent KeyStrategy = "content"
)

// ParseKeyStrategy validates a configured strategy name.
func ParseKeyStrategy(s string) (KeyStrategy, error) {
	switch KeyStrategy(s) {
	case KeyBaseName, "":
		return KeyBaseName, nil
	case KeyContent:
		return KeyContent, nil
	}
	return "", fmt.Errorf("unknown mark key strategy %q (want basename or content)", s)
}

// Key returns the base-name mark key for location.
func Key(location string) string {
	return KeyPrefix + filepath.Base(location)
}

// KeyFor returns the mark key for location under strategy.
func KeyFor(location string, strategy KeyStrategy) (string, error) {
	if strategy != KeyContent {
		return Key(location), nil
	}
	hash, err := ComputeHash(location)
	if err != nil {
		return "", err
	}
	return KeyPrefix + hash, nil
}

// ComputeHash generates content hash for file identity
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// Resume returns the page a document should open at: the stored mark when it
// falls inside [0, pageCount), otherwise 0.
func Resume(store MarkStore, key string, pageCount int) int {
	if store == nil {
		return 0
	}
	page, ok := store.Get(key)
	if !ok || page < 0 || page >= pageCount {
		return 0
	}
	return page
}
