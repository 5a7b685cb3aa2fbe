package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/parceltrack/internal/engine"
)

func TestSyncModel_ProgressUpdates(t *testing.T) {
	m := NewSyncModel(&engine.CancelFlag{}, 20)

	updated, _ := m.Update(ProgressMsg{
		Current:        5,
		Total:          20,
		TrackingNumber: "DR123456789CZ",
		Succeeded:      4,
		Failed:         1,
	})
	model := updated.(*SyncModel)

	view := model.View()
	assert.Contains(t, view, "5/20")
	assert.Contains(t, view, "DR123456789CZ")
	assert.Contains(t, view, "ok 4")
	assert.Contains(t, view, "failed 1")
	assert.Contains(t, view, "q/esc: cancel")
}

func TestSyncModel_CancelKeys(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune("q")},
		"esc":    {Type: tea.KeyEsc},
		"ctrl+c": {Type: tea.KeyCtrlC},
	}

	for name, key := range keys {
		t.Run(name, func(t *testing.T) {
			cancel := &engine.CancelFlag{}
			m := NewSyncModel(cancel, 10)

			updated, cmd := m.Update(key)
			model := updated.(*SyncModel)

			// Cancellation is cooperative: the flag is raised but the
			// program keeps running until the engine reports done.
			assert.Nil(t, cmd)
			assert.True(t, cancel.Cancelled())
			assert.True(t, model.Cancelling())
			assert.Contains(t, model.View(), "Cancelling")
		})
	}
}

func TestSyncModel_OtherKeysIgnored(t *testing.T) {
	cancel := &engine.CancelFlag{}
	m := NewSyncModel(cancel, 10)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, cancel.Cancelled())
	assert.False(t, updated.(*SyncModel).Cancelling())
}

func TestSyncModel_Done(t *testing.T) {
	m := NewSyncModel(&engine.CancelFlag{}, 3)

	summary := engine.Summary{
		Status:    engine.StatusCompleted,
		TotalRows: 3,
		Processed: 3,
		Succeeded: 2,
		Failed:    1,
	}
	updated, cmd := m.Update(DoneMsg{Summary: summary})
	model := updated.(*SyncModel)

	require.NotNil(t, cmd)
	assert.True(t, model.Done())
	assert.Equal(t, summary, model.Summary())

	view := model.View()
	assert.Contains(t, view, "Processing complete!")
	assert.Contains(t, view, "Successful updates: 2")
	assert.Contains(t, view, "Failed updates: 1")
}

func TestSyncModel_WindowSize(t *testing.T) {
	m := NewSyncModel(&engine.CancelFlag{}, 10)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Equal(t, 40, updated.(*SyncModel).width)
}

func TestRenderRunSummary(t *testing.T) {
	t.Run("Cancelled", func(t *testing.T) {
		out := RenderRunSummary(engine.Summary{
			Status:    engine.StatusCancelled,
			TotalRows: 30,
			Processed: 15,
			Succeeded: 14,
			Failed:    1,
		})
		assert.Contains(t, out, "Processing cancelled")
		assert.Contains(t, out, "last checkpoint")
		assert.Contains(t, out, "15 of 30")
	})

	t.Run("Failed", func(t *testing.T) {
		out := RenderRunSummary(engine.Summary{Status: engine.StatusFailed, Failed: 3})
		assert.Contains(t, out, "Processing failed")
	})

	t.Run("LargeCountsAreGrouped", func(t *testing.T) {
		out := RenderRunSummary(engine.Summary{
			Status:    engine.StatusCompleted,
			Succeeded: 12345,
		})
		assert.Contains(t, out, "12,345")
	})
}
