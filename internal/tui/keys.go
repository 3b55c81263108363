package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause  key.Binding
	Reseed key.Binding
	Theme  key.Binding
	Record key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pause:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Reseed: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reseed")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Record: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "record gif")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reseed, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Reseed, k.Theme},
		{k.Record, k.Help, k.Quit},
	}
}
