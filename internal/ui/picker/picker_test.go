package picker

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m *model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(m *model, code rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

var branches = []Item{
	{Label: "main"},
	{Label: "exp/attention-heads", Detail: "modified"},
	{Label: "exp/lr-sweep"},
	{Label: "fix-tokenizer"},
}

func TestPicker_Filter(t *testing.T) {
	t.Parallel()
	m := newModel("Branch", branches)
	require.Len(t, m.filtered, len(branches))

	typeText(m, "lrsw")
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "exp/lr-sweep", m.filtered[0].Str)

	cmd := press(m, tea.KeyEnter)
	assert.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.Equal(t, 2, m.chosen)
}

func TestPicker_Navigate(t *testing.T) {
	t.Parallel()
	m := newModel("Branch", branches)

	press(m, tea.KeyUp)
	assert.Equal(t, 0, m.cursor)
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	assert.Equal(t, 2, m.cursor)
	for range 10 {
		press(m, tea.KeyDown)
	}
	assert.Equal(t, len(branches)-1, m.cursor)

	// Narrowing the list clamps the cursor.
	typeText(m, "main")
	assert.Equal(t, 0, m.cursor)
}

func TestPicker_Escape(t *testing.T) {
	t.Parallel()
	m := newModel("Branch", branches)

	typeText(m, "zzz")
	assert.Empty(t, m.filtered)
	assert.Nil(t, press(m, tea.KeyEnter), "enter with no match does nothing")

	// The first escape clears the filter, the second cancels.
	press(m, tea.KeyEscape)
	assert.False(t, m.done)
	assert.Len(t, m.filtered, len(branches))

	press(m, tea.KeyEscape)
	assert.True(t, m.done)
	assert.Equal(t, -1, m.chosen)
}

func TestPicker_View(t *testing.T) {
	t.Parallel()
	m := newModel("Branch", branches)
	view := m.View().Content
	assert.Contains(t, view, "Branch")
	assert.Contains(t, view, "modified")
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()
	idx, ok, err := Run("Branch", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}
