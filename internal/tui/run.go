package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/peadz/internal/catalog"
)

// Run shows the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))

	// Changes made inside Update are reported while the event loop is busy,
	// so Send must not block the caller.
	cancel := opts.Catalog.Subscribe(func(c catalog.Change) {
		go p.Send(catalogChangedMsg(c))
	})
	defer cancel()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
