// Package picker provides a fuzzy-filtered single-choice list, used to pick
// a branch when a command is run without one.
package picker

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/em/internal/ui/styles"
)

// maxVisible bounds the number of rows drawn at once.
const maxVisible = 12

// Item is one choice.
type Item struct {
	Label  string // matched against the filter
	Detail string // shown dimmed after the label
}

type items []Item

func (s items) String(i int) string { return s[i].Label }
func (s items) Len() int            { return len(s) }

type model struct {
	title    string
	items    items
	input    textinput.Model
	filtered []fuzzy.Match
	cursor   int
	chosen   int
	done     bool
}

func newModel(title string, list []Item) *model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type to filter"
	ti.Focus()

	m := &model{title: title, items: list, input: ti, chosen: -1}
	m.applyFilter()
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c":
		m.done = true
		return m, tea.Quit
	case "esc":
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.applyFilter()
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if len(m.filtered) == 0 {
			return m, nil
		}
		m.chosen = m.filtered[m.cursor].Index
		m.done = true
		return m, tea.Quit
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter keeps the original order for an empty filter and the fuzzy
// ranking otherwise.
func (m *model) applyFilter() {
	filter := m.input.Value()
	if filter == "" {
		m.filtered = make([]fuzzy.Match, len(m.items))
		for i, it := range m.items {
			m.filtered[i] = fuzzy.Match{Str: it.Label, Index: i}
		}
	} else {
		m.filtered = fuzzy.FindFrom(filter, m.items)
	}
	m.cursor = min(m.cursor, max(0, len(m.filtered)-1))
}

func (m *model) View() tea.View {
	if m.done {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(styles.PrimaryStyle.Bold(true).Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := min(len(m.filtered), start+maxVisible)
	for i := start; i < end; i++ {
		match := m.filtered[i]
		selected := i == m.cursor
		if selected {
			b.WriteString(styles.AccentStyle.Render("▸ "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(highlight(match.Str, match.MatchedIndexes, selected))
		if d := m.items[match.Index].Detail; d != "" {
			b.WriteString("  ")
			b.WriteString(styles.MutedStyle.Render(d))
		}
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(styles.MutedStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedStyle.Render("↑/↓ move • enter select • esc cancel"))
	b.WriteString("\n")
	return tea.NewView(b.String())
}

func highlight(label string, matched []int, selected bool) string {
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}
	base := styles.NormalStyle
	if selected {
		base = styles.AccentStyle
	}

	var b strings.Builder
	for i, r := range label {
		if set[i] {
			b.WriteString(styles.HighlightStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// Run shows the picker on stderr and returns the index of the chosen item.
// ok is false if the user cancelled or list is empty.
func Run(title string, list []Item) (index int, ok bool, err error) {
	if len(list) == 0 {
		return -1, false, nil
	}
	p := tea.NewProgram(newModel(title, list),
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(colorprofile.Detect(os.Stderr, os.Environ())),
	)
	final, err := p.Run()
	if err != nil {
		return -1, false, err
	}
	m := final.(*model)
	if m.chosen < 0 {
		return -1, false, nil
	}
	return m.chosen, true, nil
}
