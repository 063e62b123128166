package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the dashboard's key bindings.
type KeyMap struct {
	Up, Down  key.Binding
	NextRange key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        bind("↑/k", "scroll up", "up", "k"),
		Down:      bind("↓/j", "scroll down", "down", "j"),
		NextRange: bind("tab/n", "next range", "tab", "n"),
		Refresh:   bind("r", "reload", "r"),
		Help:      bind("?", "more keys", "?"),
		Quit:      bind("q", "quit", "q", "esc", "ctrl+c"),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextRange, k.Refresh, k.Help, k.Quit}
}

// FullHelp lists every binding, grouped into columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.NextRange, k.Refresh}, {k.Help, k.Quit}}
}
