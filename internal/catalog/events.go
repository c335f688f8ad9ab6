package catalog

// ChangeKind identifies what a Change describes.
type ChangeKind int

const (
	EntryAdded ChangeKind = iota
	EntryRemoved
	FolderCreated
	FolderRemoved
	SelectionChanged
)

func (k ChangeKind) String() string {
	switch k {
	case EntryAdded:
		return "entry-added"
	case EntryRemoved:
		return "entry-removed"
	case FolderCreated:
		return "folder-created"
	case FolderRemoved:
		return "folder-removed"
	case SelectionChanged:
		return "selection-changed"
	}
	return "unknown"
}

// Change is delivered to subscribers after a mutation has been applied in
// memory. Entry is the zero value for folder changes and for a cleared
// selection.
type Change struct {
	Kind   ChangeKind
	Entry  Entry
	Folder string
}

// Subscribe registers fn for every subsequent change. Observers are called
// synchronously, outside the catalog lock, on the goroutine that made the
// change. The returned func removes the subscription.
func (c *Catalog) Subscribe(fn func(Change)) (cancel func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Catalog) notify(changes ...Change) {
	c.subMu.Lock()
	fns := make([]func(Change), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.subMu.Unlock()

	for _, ch := range changes {
		for _, fn := range fns {
			fn(ch)
		}
	}
}
