package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEntry is returned by Add when the location is already tracked.
	// The catalog is left untouched.
	ErrDuplicateEntry = errors.New("document already in library")

	// ErrEmptyFolderName is returned by CreateFolder for blank names.
	ErrEmptyFolderName = errors.New("folder name is empty")
)

// PersistError reports a failed save. The in-memory change that triggered
// the save is kept.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save catalog (%s %s): %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
