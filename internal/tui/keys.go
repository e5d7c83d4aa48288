package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Escape    key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Edit      key.Binding
	Immersive key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "start/pause"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "=", "up", "k"),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "down", "j"),
			key.WithHelp("-", "slower"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "i"),
			key.WithHelp("e", "edit text"),
		),
		Immersive: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "immersive"),
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

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Faster, k.Slower, k.Edit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Escape, k.Faster, k.Slower},
		{k.Edit, k.Immersive, k.Help, k.Quit},
	}
}
