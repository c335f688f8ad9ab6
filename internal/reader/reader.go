// Package reader provides paged reading sessions that resume at the last
// page shown for each document.
package reader

import (
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/metcalfc/peadz/internal/state"
)

// Session holds the state for one open document.
type Session struct {
	Document
	CurrentPage int // zero-based
	BookMode    bool
	PageInput   string // text of the page entry field, one-based

	marks state.MarkStore
	key   string
	log   *logrus.Entry
}

// NewSession opens doc at its remembered page. marks may be nil, in which
// case nothing is remembered.
func NewSession(doc Document, marks state.MarkStore, key string, log *logrus.Entry) *Session {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	s := &Session{
		Document: doc,
		marks:    marks,
		key:      key,
		log:      log.WithFields(logrus.Fields{"component": "reader", "document": doc.Title}),
	}
	s.CurrentPage = state.Resume(marks, key, doc.PageCount)
	s.PageInput = strconv.Itoa(s.CurrentPage + 1)
	return s
}

// Key is the page mark key this session writes to.
func (s *Session) Key() string { return s.key }

// SetPage applies a page change reported by the rendering surface or by
// navigation. Out-of-range pages are ignored. Every change is remembered.
func (s *Session) SetPage(page int) bool {
	if page < 0 || page >= s.PageCount {
		return false
	}
	s.PageInput = strconv.Itoa(page + 1)
	if page == s.CurrentPage {
		return true
	}
	s.CurrentPage = page
	if s.marks != nil {
		if err := s.marks.Set(s.key, page); err != nil {
			s.log.WithError(err).WithField("page", page).Warn("failed to remember page")
		}
	}
	return true
}

// step is how far one navigation move goes.
func (s *Session) step() int {
	if s.BookMode {
		return 2
	}
	return 1
}

// spreadStart is the first page of the spread containing CurrentPage.
func (s *Session) spreadStart() int {
	if s.BookMode {
		return s.CurrentPage - s.CurrentPage%2
	}
	return s.CurrentPage
}

// Next moves forward one page, or one spread in book mode.
func (s *Session) Next() bool {
	target := s.spreadStart() + s.step()
	if target >= s.PageCount {
		return false
	}
	return s.SetPage(target)
}

// Prev moves back one page, or one spread in book mode.
func (s *Session) Prev() bool {
	start := s.spreadStart()
	if start == 0 {
		return false
	}
	target := start - s.step()
	if target < 0 {
		target = 0
	}
	return s.SetPage(target)
}

// ToggleBookMode switches between single-page and two-page display.
func (s *Session) ToggleBookMode() {
	s.BookMode = !s.BookMode
}

// Spread returns the pages currently visible.
func (s *Session) Spread() []int {
	if s.PageCount == 0 {
		return nil
	}
	if !s.BookMode {
		return []int{s.CurrentPage}
	}
	start := s.spreadStart()
	if start+1 < s.PageCount {
		return []int{start, start + 1}
	}
	return []int{start}
}

// AtEnd returns true if the last page is visible.
func (s *Session) AtEnd() bool {
	spread := s.Spread()
	return len(spread) == 0 || spread[len(spread)-1] >= s.PageCount-1
}

// Progress returns the one-based current page and the page count.
func (s *Session) Progress() (current, total int) {
	return s.CurrentPage + 1, s.PageCount
}

// FilterInput drops everything but digits from typed page text.
func FilterInput(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
}

// SubmitInput jumps to the one-based page typed by the user. Invalid or
// out-of-range input reverts PageInput to the current page and returns false.
func (s *Session) SubmitInput(text string) bool {
	n, err := strconv.Atoi(FilterInput(text))
	if err != nil || n < 1 || n > s.PageCount {
		s.PageInput = strconv.Itoa(s.CurrentPage + 1)
		return false
	}
	return s.SetPage(n - 1)
}
