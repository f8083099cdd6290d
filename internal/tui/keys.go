package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the playback TUI.
type KeyMap struct {
	PlayPause key.Binding
	Stop      key.Binding
	Next      key.Binding
	Previous  key.Binding
	Snap      key.Binding
	Loop      key.Binding
	Faster    key.Binding
	Slower    key.Binding
	NextPart  key.Binding
	PrevPart  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next frame"),
		),
		Previous: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous frame"),
		),
		Snap: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "snap"),
		),
		Loop: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "loop"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "slower"),
		),
		NextPart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next part"),
		),
		PrevPart: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous part"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings to show in the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Next, k.Previous, k.NextPart, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop, k.Snap, k.Loop},    // Transport
		{k.Next, k.Previous, k.Faster, k.Slower}, // Position & speed
		{k.NextPart, k.PrevPart, k.Help, k.Quit}, // Parts & general
	}
}
