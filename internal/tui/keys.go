package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the grid
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Cancel   key.Binding
	Reload   key.Binding
	Write    key.Binding
	Quit     key.Binding
}

var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "right"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K", "shift+left"),
		key.WithHelp("K", "move earlier"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J", "shift+right"),
		key.WithHelp("J", "move later"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "c"),
		key.WithHelp("esc", "cancel load"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Write: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "write order"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.MoveUp, k.MoveDown, k.Cancel, k.Write, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.MoveUp, k.MoveDown, k.ZoomIn, k.ZoomOut},
		{k.Cancel, k.Reload, k.Write, k.Quit},
	}
}
