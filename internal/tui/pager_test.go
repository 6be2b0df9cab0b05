package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerViewEmptyUntilSized(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	model := NewPager("Conflicts", "body")
	assert.Equal(t, "", model.View())
	assert.False(t, model.Ready())
}

func TestPagerRendersContentAfterResize(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	model := NewPager("Conflicts", "first line\nsecond line")

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	pager := updated.(PagerModel)

	assert.True(t, pager.Ready())
	view := pager.View()
	assert.Contains(t, view, "Conflicts")
	assert.Contains(t, view, "first line")
	assert.Contains(t, view, "second line")
}

func TestPagerResizeKeepsContent(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	model := NewPager("T", "content")

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	updated, _ = updated.Update(tea.WindowSizeMsg{Width: 80, Height: 2})
	pager := updated.(PagerModel)

	assert.Equal(t, 80, pager.viewport.Width)
	assert.Equal(t, 1, pager.viewport.Height)
}

func TestPagerQuitKey(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	model := NewPager("T", "content")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestPagerProgramQuits(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	lines := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, "mod line")
	}

	tm := teatest.NewTestModel(t, NewPager("Conflicts", strings.Join(lines, "\n")), teatest.WithInitialTermSize(60, 20))
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("mod line"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(PagerModel)
	require.True(t, ok)
	assert.True(t, final.Ready())
}
