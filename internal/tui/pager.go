package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PagerModel shows a pre-rendered report in a scrollable viewport.
type PagerModel struct {
	title    string
	content  string
	viewport viewport.Model
	help     help.Model
	keys     pagerKeyMap
	ready    bool
}

func NewPager(title string, content string) PagerModel {
	return PagerModel{
		title:   title,
		content: content,
		help:    help.New(),
		keys: pagerKeyMap{
			Up:   ScrollUp(),
			Down: ScrollDown(),
			Quit: Quit(),
		},
	}
}

func (m PagerModel) Init() tea.Cmd { return nil }

func (m PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		height := msg.Height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer())
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PagerModel) View() string {
	if !m.ready {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.header())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.footer())
	return sb.String()
}

func (m PagerModel) header() string {
	return TitleStyle.Render(m.title)
}

func (m PagerModel) footer() string {
	return HelpStyle.Render(m.help.View(m.keys))
}

func (m PagerModel) Ready() bool {
	return m.ready
}
