package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for both screens.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Open         key.Binding
	Add          key.Binding
	NewFolder    key.Binding
	CycleFolder  key.Binding
	Delete       key.Binding
	DeleteFolder key.Binding
	Quit         key.Binding

	NextPage key.Binding
	PrevPage key.Binding
	Book     key.Binding
	GoTo     key.Binding
	Close    key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		NewFolder:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new folder")),
		CycleFolder:  key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f", "folder")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteFolder: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete folder")),
		Quit:         key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),

		NextPage: key.NewBinding(key.WithKeys("right", "l", "pgdown", " "), key.WithHelp("→", "next")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev")),
		Book:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "book mode")),
		GoTo:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		Close:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "back")),
	}
}

func helpLine(bindings ...key.Binding) string {
	var s string
	for i, b := range bindings {
		if i > 0 {
			s += "  "
		}
		h := b.Help()
		s += h.Key + ": " + h.Desc
	}
	return s
}
