package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the viewer's bindings. It implements help.KeyMap.
type keyMap struct {
	NextCategory key.Binding
	PrevCategory key.Binding
	NextLevel    key.Binding
	PrevLevel    key.Binding
	ResetFilter  key.Binding
	NextPoint    key.Binding
	PrevPoint    key.Binding
	Release      key.Binding
	Search       key.Binding
	Copy         key.Binding
	Retry        key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextCategory: key.NewBinding(key.WithKeys("c"), key.WithHelp("c/C", "category")),
		PrevCategory: key.NewBinding(key.WithKeys("C")),
		NextLevel:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l/L", "level")),
		PrevLevel:    key.NewBinding(key.WithKeys("L")),
		ResetFilter:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
		NextPoint:    key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n/p", "word")),
		PrevPoint:    key.NewBinding(key.WithKeys("p", "shift+tab")),
		Release:      key.NewBinding(key.WithKeys("esc")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Retry:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is the single help line under the chart.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextCategory, k.NextLevel, k.ResetFilter, k.NextPoint, k.Search, k.Copy, k.Retry, k.Help, k.Quit}
}

// FullHelp groups every binding that carries help text.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextCategory, k.NextLevel, k.ResetFilter},
		{k.NextPoint, k.Search, k.Copy},
		{k.Retry, k.Help, k.Quit},
	}
}
