//go:build gui

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/gen2brain/go-fitz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/metcalfc/peadz/internal/catalog"
	"github.com/metcalfc/peadz/internal/cli"
	"github.com/metcalfc/peadz/internal/reader"
	"github.com/metcalfc/peadz/internal/state"
)

const (
	appID        = "io.github.metcalfc.peadz"
	allLabel     = "All"
	newFolderOpt = "New folder…"

	thumbDPI = 36
	pageDPI  = 110
)

// fitzSurface renders pages with MuPDF on a worker goroutine and reports
// each page once its images are ready.
type fitzSurface struct {
	log      *logrus.Entry
	requests *reader.PageChanges
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	doc      *fitz.Document
	pages    int
	bookMode bool
	latest   int // newest page asked for by GoTo
	onChange func(int)
	shown    []image.Image
}

func newFitzSurface(log *logrus.Entry) *fitzSurface {
	return &fitzSurface{log: log, requests: reader.NewPageChanges(1)}
}

func (s *fitzSurface) Load(location string) (int, error) {
	doc, err := fitz.New(location)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.doc = doc
	s.pages = doc.NumPage()
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.requests.Run(ctx, s.render)
	}()
	return s.pages, nil
}

func (s *fitzSurface) SetBookMode(on bool) {
	s.mu.Lock()
	s.bookMode = on
	s.mu.Unlock()
}

// GoTo never blocks; only the newest request is rendered.
func (s *fitzSurface) GoTo(page int) {
	s.mu.Lock()
	s.latest = page
	s.mu.Unlock()
	s.requests.Post(page)
}

// Wants reports whether page is still the newest request.
func (s *fitzSurface) Wants(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page == s.latest
}

func (s *fitzSurface) OnPageChanged(fn func(page int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Shown returns the images of the last rendered spread.
func (s *fitzSurface) Shown() []image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

func (s *fitzSurface) render(page int) {
	s.mu.Lock()
	doc, pages, book, latest := s.doc, s.pages, s.bookMode, s.latest
	s.mu.Unlock()
	if page < 0 || page >= pages || page != latest {
		return
	}

	spread := []int{page}
	if book {
		start := page - page%2
		spread = []int{start}
		if start+1 < pages {
			spread = append(spread, start+1)
		}
	}
	imgs := make([]image.Image, 0, len(spread))
	for _, p := range spread {
		img, err := doc.ImageDPI(p, pageDPI)
		if err != nil {
			s.log.WithError(err).WithField("page", p).Warn("render failed")
			continue
		}
		imgs = append(imgs, img)
	}

	s.mu.Lock()
	if page != s.latest {
		s.mu.Unlock()
		return
	}
	s.shown = imgs
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(page)
	}
}

func (s *fitzSurface) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	err := s.doc.Close()
	s.doc = nil
	return err
}

func thumbnail(location string) (image.Image, error) {
	doc, err := fitz.New(location)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(0, thumbDPI)
}

// gui holds the window and the widgets that outlive a screen change. All
// fields are touched on the fyne thread only.
type gui struct {
	win   fyne.Window
	lib   *catalog.Catalog
	marks state.MarkStore
	env   *cli.Env
	log   *logrus.Entry

	folder       string
	folderSelect *widget.Select
	grid         *fyne.Container
	thumbs       map[string]image.Image
	library      fyne.CanvasObject

	closeReader func()
}

func newGUI(a fyne.App, env *cli.Env, marks state.MarkStore) *gui {
	g := &gui{
		win:    a.NewWindow("peadz"),
		lib:    env.Catalog,
		marks:  marks,
		env:    env,
		log:    env.Logger("gui"),
		folder: catalog.AllFolders,
		thumbs: make(map[string]image.Image),
	}

	g.folderSelect = widget.NewSelect(nil, g.onFolderSelected)
	g.grid = container.NewGridWrap(fyne.NewSize(170, 230))

	addBtn := widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), g.showAdd)
	delFolderBtn := widget.NewButtonWithIcon("Delete folder", theme.DeleteIcon(), g.confirmDeleteFolder)
	toolbar := container.NewHBox(widget.NewLabel("Folder"), g.folderSelect, addBtn, delFolderBtn)
	g.library = container.NewBorder(toolbar, nil, nil, nil, container.NewVScroll(g.grid))

	g.lib.Subscribe(func(catalog.Change) {
		fyne.Do(g.refresh)
	})

	g.refresh()
	g.win.SetContent(g.library)
	g.win.Resize(fyne.NewSize(900, 700))
	g.win.SetOnClosed(func() {
		if g.closeReader != nil {
			g.closeReader()
		}
	})
	return g
}

func (g *gui) folderOptions() []string {
	opts := []string{allLabel}
	opts = append(opts, g.lib.Folders()...)
	return append(opts, newFolderOpt)
}

func (g *gui) refresh() {
	g.folderSelect.Options = g.folderOptions()
	selected := allLabel
	if g.folder != catalog.AllFolders {
		selected = g.folder
	}
	g.folderSelect.Selected = selected
	g.folderSelect.Refresh()

	g.grid.Objects = nil
	for _, e := range g.lib.List(g.folder) {
		g.grid.Add(g.card(e))
	}
	g.grid.Refresh()
}

func (g *gui) onFolderSelected(choice string) {
	switch choice {
	case newFolderOpt:
		g.showNewFolder()
	case allLabel:
		g.folder = catalog.AllFolders
		g.refresh()
	default:
		if choice != g.folder {
			g.folder = choice
			g.refresh()
		}
	}
}

func (g *gui) card(e catalog.Entry) fyne.CanvasObject {
	preview := container.NewStack(container.NewCenter(widget.NewLabel("No preview")))
	if img, ok := g.thumbs[e.ID]; ok {
		preview.Objects = []fyne.CanvasObject{thumbImage(img)}
	} else {
		go func() {
			img, err := thumbnail(e.Location)
			if err != nil {
				g.log.WithError(err).WithField("location", e.Location).Debug("no thumbnail")
				return
			}
			fyne.Do(func() {
				g.thumbs[e.ID] = img
				preview.Objects = []fyne.CanvasObject{thumbImage(img)}
				preview.Refresh()
			})
		}()
	}

	name := widget.NewLabel(e.DisplayName)
	name.Truncation = fyne.TextTruncateEllipsis
	open := widget.NewButtonWithIcon("", theme.DocumentIcon(), func() { g.openReader(e) })
	del := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { g.confirmDelete(e) })

	return container.NewBorder(nil, container.NewBorder(nil, nil, nil, container.NewHBox(open, del), name), nil, nil, preview)
}

func thumbImage(img image.Image) *canvas.Image {
	c := canvas.NewImageFromImage(img)
	c.FillMode = canvas.ImageFillContain
	c.SetMinSize(fyne.NewSize(150, 180))
	return c
}

func (g *gui) showAdd() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()

		folder := g.folder
		if folder == catalog.AllFolders {
			folder = g.env.Config.DefaultFolder
		}
		_, err = g.lib.Add(path, folder)
		var perr *catalog.PersistError
		switch {
		case errors.Is(err, catalog.ErrDuplicateEntry):
		case errors.As(err, &perr):
			dialog.ShowError(fmt.Errorf("the library could not be saved: %w", perr.Err), g.win)
		case err != nil:
			dialog.ShowError(err, g.win)
		}
	}, g.win)
	fd.SetFilter(storage.NewExtensionFileFilter(reader.Extensions()))
	fd.Show()
}

func (g *gui) showNewFolder() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Folder name")
	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm("New folder", "Create", "Cancel", items, func(ok bool) {
		if !ok {
			g.refresh()
			return
		}
		if err := g.lib.CreateFolder(entry.Text); err != nil {
			dialog.ShowError(err, g.win)
			g.refresh()
			return
		}
		g.folder = entry.Text
		g.refresh()
	}, g.win)
}

func (g *gui) confirmDelete(e catalog.Entry) {
	msg := fmt.Sprintf("Remove %s from the library?", e.DisplayName)
	dialog.ShowConfirm("Remove document", msg, func(ok bool) {
		if !ok {
			return
		}
		delete(g.thumbs, e.ID)
		if err := g.lib.DeleteEntry(e.ID); err != nil {
			dialog.ShowError(err, g.win)
		}
	}, g.win)
}

func (g *gui) confirmDeleteFolder() {
	if g.folder == catalog.AllFolders {
		return
	}
	name := g.folder
	msg := fmt.Sprintf("Remove folder %s and all its documents?", name)
	dialog.ShowConfirm("Remove folder", msg, func(ok bool) {
		if !ok {
			return
		}
		g.folder = catalog.AllFolders
		if err := g.lib.DeleteFolder(name); err != nil {
			dialog.ShowError(err, g.win)
		}
		g.refresh()
	}, g.win)
}

func (g *gui) openReader(e catalog.Entry) {
	g.lib.Select(e.ID)

	surface := newFitzSurface(g.log.WithField("document", e.DisplayName))
	pages, err := surface.Load(e.Location)
	if err != nil || pages < 1 {
		g.log.WithError(err).WithField("location", e.Location).Warn("cannot open document")
		surface.Close()
		g.showPlaceholder(e)
		return
	}

	markKey, err := state.KeyFor(e.Location, g.env.Config.MarkKey)
	if err != nil {
		markKey = state.Key(e.Location)
	}
	doc := reader.Document{Location: e.Location, Title: e.DisplayName, PageCount: pages}
	session := reader.NewSession(doc, g.marks, markKey, g.env.Logger("reader"))
	session.BookMode = g.env.Config.BookMode
	surface.SetBookMode(session.BookMode)

	pageBox := container.NewHBox()
	status := widget.NewLabel("")
	pageEntry := widget.NewEntry()
	pageEntry.OnChanged = func(s string) {
		if f := reader.FilterInput(s); f != s {
			pageEntry.SetText(f)
		}
	}

	show := func() {
		pageBox.Objects = nil
		for _, img := range surface.Shown() {
			c := canvas.NewImageFromImage(img)
			c.FillMode = canvas.ImageFillContain
			c.SetMinSize(fyne.NewSize(380, 520))
			pageBox.Add(c)
		}
		pageBox.Refresh()
		_, total := session.Progress()
		status.SetText(fmt.Sprintf("of %d", total))
		pageEntry.SetText(session.PageInput)
	}

	changes := reader.NewPageChanges(4)
	changes.Attach(surface)
	ctx, cancel := context.WithCancel(context.Background())
	go changes.Run(ctx, func(page int) {
		fyne.Do(func() {
			if !surface.Wants(page) {
				return
			}
			session.SetPage(page)
			show()
		})
	})

	pageEntry.OnSubmitted = func(s string) {
		if session.SubmitInput(s) {
			surface.GoTo(session.CurrentPage)
			return
		}
		pageEntry.SetText(session.PageInput)
	}

	prev := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		if session.Prev() {
			surface.GoTo(session.CurrentPage)
		}
	})
	next := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		if session.Next() {
			surface.GoTo(session.CurrentPage)
		}
	})
	book := widget.NewCheck("Book", func(on bool) {
		if on != session.BookMode {
			session.ToggleBookMode()
		}
		surface.SetBookMode(on)
		surface.GoTo(session.CurrentPage)
	})
	book.SetChecked(session.BookMode)

	var once sync.Once
	g.closeReader = func() {
		once.Do(func() {
			cancel()
			surface.Close()
			g.win.Canvas().SetOnTypedKey(nil)
			g.lib.Deselect()
		})
	}
	closeBtn := widget.NewButtonWithIcon("Close", theme.CancelIcon(), func() {
		g.closeReader()
		g.closeReader = nil
		g.win.SetContent(g.library)
		g.refresh()
	})

	g.win.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		switch k.Name {
		case fyne.KeyLeft:
			prev.OnTapped()
		case fyne.KeyRight:
			next.OnTapped()
		case fyne.KeyEscape:
			closeBtn.OnTapped()
		}
	})

	toolbar := container.NewHBox(prev, next, widget.NewLabel("Page"), pageEntry, status, book, widget.NewLabel(e.DisplayName), closeBtn)
	g.win.SetContent(container.NewBorder(toolbar, nil, nil, nil, container.NewCenter(pageBox)))
	surface.GoTo(session.CurrentPage)
}

func (g *gui) showPlaceholder(e catalog.Entry) {
	back := widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), func() {
		g.lib.Deselect()
		g.win.SetContent(g.library)
	})
	msg := widget.NewLabel(fmt.Sprintf("%s cannot be displayed", e.DisplayName))
	g.win.SetContent(container.NewBorder(container.NewHBox(back), nil, nil, nil, container.NewCenter(msg)))
}

// guiMarks picks the mark store; the preferences backend lives in the app.
func guiMarks(a fyne.App, env *cli.Env) (state.MarkStore, error) {
	if env.Config.MarksBackend == state.BackendPreferences {
		store := state.NewPrefsStore(a.Preferences())
		env.UseMarks(store)
		return store, nil
	}
	return env.Marks()
}

func runGUI(cmd *cobra.Command, env *cli.Env) error {
	a := app.NewWithID(appID)
	marks, err := guiMarks(a, env)
	if err != nil {
		return err
	}
	newGUI(a, env, marks).win.ShowAndRun()
	return nil
}

func main() {
	if err := cli.Execute(versionString(), runGUI); err != nil {
		os.Exit(1)
	}
}
