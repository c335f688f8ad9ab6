package state

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Backend names a MarkStore implementation.
type Backend string

const (
	BackendJSON        Backend = "json"
	BackendBadger      Backend = "badger"
	BackendPreferences Backend = "preferences"
)

// Open returns the file-backed store for backend rooted at dir. The
// preferences backend needs a running desktop app and is built with
// NewPrefsStore instead.
func Open(backend Backend, dir string, log *logrus.Entry) (MarkStore, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(dir, log)
	case BackendBadger:
		return NewBadgerStore(filepath.Join(dir, "marks"), log)
	case BackendPreferences:
		return nil, fmt.Errorf("marks backend %q is only available in the desktop app", backend)
	}
	return nil, fmt.Errorf("unknown marks backend %q", backend)
}
