package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagerag/internal/domain"
)

type echoEngine struct {
	seen [][]domain.Exchange
}

func (e *echoEngine) Answer(ctx context.Context, q string, h []domain.Exchange) string {
	e.seen = append(e.seen, h)
	return "re: " + q
}

func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_AskAndAnswer(t *testing.T) {
	eng := &echoEngine{}
	m := New(eng)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	m, cmd := submit(t, m, "best time for reels?")
	require.NotNil(t, cmd)
	assert.True(t, m.pending)
	assert.Equal(t, []domain.Exchange{domain.UserSaid("best time for reels?")}, m.History())

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.pending)
	assert.Equal(t, domain.AssistantSaid("re: best time for reels?"), m.History()[1])
	assert.Contains(t, m.View(), "re: best time for reels?")

	m, cmd = submit(t, m, "and images?")
	m.Update(cmd())
	require.Len(t, eng.seen, 2)
	assert.Len(t, eng.seen[1], 2)
}

func TestModel_ExitAndPending(t *testing.T) {
	m := New(&echoEngine{})
	for _, word := range []string{"exit", " QUIT "} {
		_, cmd := submit(t, m, word)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}

	m, _ = submit(t, m, "first")
	_, cmd := submit(t, m, "second")
	assert.Nil(t, cmd)
}

func TestModel_PriorTurnsLeaveRoomForQuestion(t *testing.T) {
	eng := &echoEngine{}
	m := New(eng)
	for i := 0; i < 10; i++ {
		var cmd tea.Cmd
		m, cmd = submit(t, m, fmt.Sprintf("q%d", i))
		next, _ := m.Update(cmd())
		m = next.(Model)
	}
	require.Len(t, m.History(), 20)

	_, cmd := submit(t, m, "one more")
	cmd()
	last := eng.seen[len(eng.seen)-1]
	require.Len(t, last, 19)
	assert.Equal(t, domain.AssistantSaid("re: q0"), last[0])
}

func TestAppendCapped(t *testing.T) {
	var h []domain.Exchange
	for i := 0; i < 25; i++ {
		h = appendCapped(h, domain.UserSaid(fmt.Sprint(i)))
	}
	require.Len(t, h, 20)
	assert.Equal(t, "5", h[0].Text)
}
