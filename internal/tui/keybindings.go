package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/meza/koikatsu-mod-manager/internal/i18n"
)

func Quit() key.Binding {
	return key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", i18n.T("key.help.quit")),
	)
}

func ScrollUp() key.Binding {
	return key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", i18n.T("key.help.scroll_up")),
	)
}

func ScrollDown() key.Binding {
	return key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", i18n.T("key.help.scroll_down")),
	)
}

type pagerKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func (k pagerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

func (k pagerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
