package state

import "fyne.io/fyne/v2"

// PrefsStore keeps marks in the desktop app's preferences.
type PrefsStore struct {
	prefs fyne.Preferences
}

func NewPrefsStore(prefs fyne.Preferences) *PrefsStore {
	return &PrefsStore{prefs: prefs}
}

func (s *PrefsStore) Get(key string) (int, bool) {
	page := s.prefs.IntWithFallback(key, -1)
	if page < 0 {
		return 0, false
	}
	return page, true
}

func (s *PrefsStore) Set(key string, page int) error {
	if page < 0 {
		return ErrNegativePage
	}
	s.prefs.SetInt(key, page)
	return nil
}

func (s *PrefsStore) Clear(key string) error {
	s.prefs.RemoveValue(key)
	return nil
}

// Close is a no-op; the app flushes its preferences on exit.
func (s *PrefsStore) Close() error { return nil }
