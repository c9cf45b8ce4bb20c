package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Map
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	PanUp    key.Binding
	PanDown  key.Binding
	PanLeft  key.Binding
	PanRight key.Binding

	// Actions
	Select         key.Binding
	ClearSelection key.Binding
	CycleFeature   key.Binding
	CycleVariable  key.Binding
	ToggleAxis     key.Binding
	Reload         key.Binding

	// Views
	NextView key.Binding
	PrevView key.Binding

	// Application
	Quit key.Binding
	Help key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "cursor down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "cursor right"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		PanUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "pan up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "pan down"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "pan right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "toggle country"),
		),
		ClearSelection: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear selection"),
		),
		CycleFeature: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "map feature"),
		),
		CycleVariable: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "axis variable"),
		),
		ToggleAxis: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "x/y axis"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload data"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
