package reader

import "context"

// Surface is the component that draws a document's pages. It may report
// page changes from any goroutine.
type Surface interface {
	// Load opens location and returns its page count.
	Load(location string) (int, error)
	SetBookMode(on bool)
	// GoTo asks the surface to show page.
	GoTo(page int)
	// OnPageChanged registers fn for pages the surface has finished showing.
	OnPageChanged(fn func(page int))
	Close() error
}

// PageChanges carries page-change notifications from a surface to the
// goroutine that owns the Session. Post never blocks: when the buffer is
// full the oldest pending page is dropped, so the newest one always gets
// through.
type PageChanges struct {
	ch chan int
}

func NewPageChanges(size int) *PageChanges {
	if size < 1 {
		size = 1
	}
	return &PageChanges{ch: make(chan int, size)}
}

// Post queues page. Safe for concurrent use.
func (p *PageChanges) Post(page int) {
	for {
		select {
		case p.ch <- page:
			return
		default:
		}
		select {
		case <-p.ch:
		default:
		}
	}
}

// C exposes the queue for callers that select on it themselves.
func (p *PageChanges) C() <-chan int { return p.ch }

// Run calls apply for each queued page until ctx is done. apply runs on
// the goroutine that called Run.
func (p *PageChanges) Run(ctx context.Context, apply func(page int)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case page := <-p.ch:
			apply(page)
		}
	}
}

// Attach routes surface notifications into the queue.
func (p *PageChanges) Attach(s Surface) {
	s.OnPageChanged(p.Post)
}
