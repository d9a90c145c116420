package static

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raphi011/em/internal/status"
)

func TestStatusRow(t *testing.T) {
	t.Parallel()

	row := StatusRow(status.Entry{
		Branch: "exp1",
		Class:  status.NotPushed,
		Commit: "abc1234def5678",
		Ahead:  2,
		Path:   "/work/proj/exp1",
	})
	assert.Len(t, row, len(StatusHeaders))
	assert.Equal(t, "exp1", row[0])
	assert.Contains(t, row[1], "not pushed")
	assert.Equal(t, "abc1234", row[2])
	assert.Equal(t, "+2 -0", row[3])
	assert.Equal(t, "/work/proj/exp1", row[4])

	remote := StatusRow(status.Entry{Branch: "old", Class: status.RemoteOnly, Commit: "f00"})
	assert.Equal(t, "f00", remote[2])
	assert.Empty(t, remote[3])
	assert.Empty(t, remote[4])
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RenderTable([]string{"A"}, nil))

	out := RenderTable([]string{"NAME", "VALUE"}, [][]string{
		{"short", "1"},
		{"a-much-longer-name", "2"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	// Columns are aligned.
	assert.Equal(t, strings.Index(lines[1], "1"), strings.Index(lines[2], "2"))
}

func TestRenderStatus(t *testing.T) {
	t.Parallel()

	out := RenderStatus([]status.Entry{
		{Branch: "main", Class: status.Clean, Commit: "1111111aaaa"},
		{Branch: "exp1", Class: status.Modified, Commit: "2222222bbbb", Dirty: true},
	})
	assert.Contains(t, out, "BRANCH")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "modified")
	assert.Contains(t, out, "2222222")
}

func TestStatusSummary(t *testing.T) {
	t.Parallel()

	assert.Empty(t, StatusSummary(nil))
	assert.Equal(t, "1 branch: 1 modified", StatusSummary([]status.Entry{{Branch: "a", Class: status.Modified}}))

	entries := []status.Entry{
		{Branch: "a", Class: status.NotPushed},
		{Branch: "b", Class: status.Clean},
		{Branch: "c", Class: status.RemoteOnly},
		{Branch: "d", Class: status.NotPushed},
	}
	assert.Equal(t, "4 branches: 1 clean, 2 not pushed, 1 remote only", StatusSummary(entries))
}
