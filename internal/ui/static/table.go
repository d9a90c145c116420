// Package static renders non-interactive terminal output such as the
// branch listing.
package static

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/em/internal/status"
	"github.com/raphi011/em/internal/ui/styles"
)

// RenderTable renders headers and rows as a borderless table with aligned
// columns. It returns "" if there are no rows.
func RenderTable(headers []string, rows [][]string) string {
	return renderTable(headers, rows, nil)
}

func renderTable(headers []string, rows [][]string, cellStyle func(row, col int) lipgloss.Style) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Bold.PaddingRight(2)
			}
			if cellStyle != nil {
				return cellStyle(row, col).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// StatusHeaders are the columns of the branch listing.
var StatusHeaders = []string{"BRANCH", "STATUS", "COMMIT", "AHEAD", "PATH"}

// StatusRow converts an entry into a listing row.
func StatusRow(e status.Entry) []string {
	ahead := ""
	if e.Ahead > 0 || e.Behind > 0 {
		ahead = fmt.Sprintf("+%d -%d", e.Ahead, e.Behind)
	}
	commit := e.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return []string{e.Branch, styles.Symbol(e.Class) + " " + e.Class.String(), commit, ahead, e.Path}
}

// RenderStatus renders the branch listing with the status column colored
// by class.
func RenderStatus(entries []status.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = StatusRow(e)
	}
	return renderTable(StatusHeaders, rows, func(row, col int) lipgloss.Style {
		switch col {
		case 1:
			return styles.ClassStyle(entries[row].Class)
		case 4:
			return styles.MutedStyle
		}
		return lipgloss.NewStyle()
	})
}

// StatusSummary returns a one-line tally of entries per class, e.g.
// "3 branches: 1 clean, 2 not pushed". It returns "" if there are no entries.
func StatusSummary(entries []status.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	counts := status.Counts(entries)
	var parts []string
	for c := status.Clean; c <= status.Unknown; c++ {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, c))
		}
	}
	noun := "branches"
	if len(entries) == 1 {
		noun = "branch"
	}
	return fmt.Sprintf("%d %s: %s", len(entries), noun, strings.Join(parts, ", "))
}
