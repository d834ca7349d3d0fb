package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchModel_RendersFetchedStatus(t *testing.T) {
	fetch := func() (StatusInfo, error) {
		return StatusInfo{RegisteredQueries: 4, MatchDocumentCalls: 10, ActualMatches: 3}, nil
	}

	m := NewWatchModel(fetch, time.Second, true).(*watchModel)
	updated, _ := m.Update(watchFetchedMsg{info: StatusInfo{RegisteredQueries: 4, MatchDocumentCalls: 10, ActualMatches: 3}})
	m = updated.(*watchModel)

	view := m.View()
	assert.Contains(t, view, "4")
	assert.Contains(t, view, "10")
}

func TestWatchModel_ShowsErrorOnFetchFailure(t *testing.T) {
	fetch := func() (StatusInfo, error) { return StatusInfo{}, errors.New("boom") }

	m := NewWatchModel(fetch, time.Second, true).(*watchModel)
	updated, _ := m.Update(watchFetchedMsg{err: errors.New("boom")})
	m = updated.(*watchModel)

	assert.Contains(t, m.View(), "boom")
}

func TestWatchModel_QuitOnQ(t *testing.T) {
	m := NewWatchModel(func() (StatusInfo, error) { return StatusInfo{}, nil }, time.Second, true).(*watchModel)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestWatchModel_RecordsPreviousActualMatches(t *testing.T) {
	m := NewWatchModel(func() (StatusInfo, error) { return StatusInfo{}, nil }, time.Second, true).(*watchModel)

	updated, _ := m.Update(watchFetchedMsg{info: StatusInfo{ActualMatches: 5}})
	m = updated.(*watchModel)
	updated, _ = m.Update(watchFetchedMsg{info: StatusInfo{ActualMatches: 8}})
	m = updated.(*watchModel)

	assert.True(t, m.havePrev)
	assert.Equal(t, 8, m.prevActual)
}
