package reader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface reports page changes from its own goroutine, like a real
// renderer would.
type fakeSurface struct {
	pages    int
	onChange func(int)
	wg       sync.WaitGroup
}

func (f *fakeSurface) Load(string) (int, error) { return f.pages, nil }
func (f *fakeSurface) SetBookMode(bool)         {}
func (f *fakeSurface) OnPageChanged(fn func(int)) {
	f.onChange = fn
}
func (f *fakeSurface) Close() error { f.wg.Wait(); return nil }
func (f *fakeSurface) GoTo(page int) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.onChange(page)
	}()
}

func TestPageChangesKeepsNewest(t *testing.T) {
	p := NewPageChanges(2)
	for i := 0; i < 10; i++ {
		p.Post(i)
	}

	assert.Equal(t, 8, <-p.C())
	assert.Equal(t, 9, <-p.C())
	select {
	case v := <-p.C():
		t.Fatalf("unexpected extra page %d", v)
	default:
	}
}

func TestPageChangesMinimumSize(t *testing.T) {
	p := NewPageChanges(0)
	p.Post(1)
	p.Post(2)
	assert.Equal(t, 2, <-p.C())
}

func TestPageChangesRunOnOwner(t *testing.T) {
	surface := &fakeSurface{pages: 10}
	n, err := surface.Load("/books/report.pdf")
	require.NoError(t, err)

	s := NewSession(Document{Title: "report.pdf", PageCount: n}, newMemMarks(), "k", nil)
	changes := NewPageChanges(4)
	changes.Attach(surface)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	applied := make(chan int, 16)
	go func() {
		// Only this goroutine touches the session.
		done <- changes.Run(ctx, func(page int) {
			s.SetPage(page)
			applied <- page
		})
	}()

	surface.GoTo(7)
	select {
	case page := <-applied:
		assert.Equal(t, 7, page)
	case <-time.After(2 * time.Second):
		t.Fatal("page change was not delivered")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, surface.Close())
	assert.Equal(t, 7, s.CurrentPage)
}
