package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// loadData performs the one-time data load. The repository memoizes it,
// so a reload after ClearCache is the only way this hits the network
// twice.
func (m Model) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		dataset, err := m.repo.LoadAll(ctx)
		return dataLoadedMsg{dataset: dataset, err: err}
	}
}

// loadCurve fetches the clustering-error curve for the current axis pair.
func (m Model) loadCurve() tea.Cmd {
	st := m.store.Snapshot()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return curveLoadedMsg{curve: m.repo.ErrorCurve(ctx, st.XVar, st.YVar)}
	}
}
