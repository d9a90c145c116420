package log

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// TestModes runs every writer method under each flag combination.
//
// Scenario: normal, verbose, quiet, and quiet together with --verbose
// Expected: quiet silences everything; Debug and Command need verbose
func TestModes(t *testing.T) {
	t.Parallel()

	emit := map[string]func(l *Logger){
		"Printf":  func(l *Logger) { l.Printf("Checked out %s\n", "exp1") },
		"Println": func(l *Logger) { l.Println("Renamed", "exp1", "to", "exp2") },
		"Warnf":   func(l *Logger) { l.Warnf("hook %q failed", "setup") },
		"Debug":   func(l *Logger) { l.Debug("copied branch", "from", "exp1") },
		"Command": func(l *Logger) { l.Command("/p", "git", "fetch")(time.Millisecond) },
	}

	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		writes  map[string]bool
	}{
		{"normal", false, false, map[string]bool{"Printf": true, "Println": true, "Warnf": true}},
		{"verbose", true, false, map[string]bool{"Printf": true, "Println": true, "Warnf": true, "Debug": true, "Command": true}},
		{"quiet", false, true, nil},
		{"quiet beats verbose", true, true, nil},
	}

	for _, tt := range tests {
		for method, fn := range emit {
			t.Run(tt.name+"/"+method, func(t *testing.T) {
				t.Parallel()
				var buf bytes.Buffer
				fn(New(&buf, tt.verbose, tt.quiet))
				if wrote := buf.Len() > 0; wrote != tt.writes[method] {
					t.Errorf("%s wrote %q, want output %v", method, buf.String(), tt.writes[method])
				}
			})
		}
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		emit func(l *Logger)
		want string
	}{
		{
			name: "printf",
			emit: func(l *Logger) { l.Printf("Pushed %s to %s", "exp1", "origin") },
			want: "Pushed exp1 to origin",
		},
		{
			name: "println",
			emit: func(l *Logger) { l.Println("Removed", "exp1") },
			want: "Removed exp1\n",
		},
		{
			name: "warning",
			emit: func(l *Logger) { l.Warnf("could not reach %s", "origin") },
			want: "Warning: could not reach origin\n",
		},
		{
			name: "debug pairs",
			emit: func(l *Logger) { l.Debug("removed branch", "branch", "exp/a", "path", "/p/exp%2Fa") },
			want: "removed branch branch=exp/a path=/p/exp%2Fa\n",
		},
		{
			name: "debug non-string values",
			emit: func(l *Logger) { l.Debug("scan", "ahead", 3, "err", errors.New("offline")) },
			want: "scan ahead=3 err=offline\n",
		},
		{
			name: "debug drops trailing key",
			emit: func(l *Logger) { l.Debug("rollback", "step", "AddWorktree", "dangling") },
			want: "rollback step=AddWorktree\n",
		},
		{
			name: "command with dir",
			emit: func(l *Logger) {
				l.Command("/p/.em/repo", "git", "worktree", "add", "/p/exp1", "exp1")(1234567 * time.Microsecond)
			},
			want: "[/p/.em/repo] $ git worktree add /p/exp1 exp1\n  (1.235s)\n",
		},
		{
			name: "command without dir or args",
			emit: func(l *Logger) { l.Command("", "git")(40 * time.Millisecond) },
			want: "$ git\n  (40ms)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.emit(New(&buf, true, false))
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCommand_LineBeforeRun checks the command line is written before the
// command finishes, so a hanging git call is visible.
func TestCommand_LineBeforeRun(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	done := New(&buf, true, false).Command("/p", "git", "push")
	if got := buf.String(); got != "[/p] $ git push\n" {
		t.Fatalf("before done: %q", got)
	}
	done(2 * time.Second)
	if got := buf.String(); got != "[/p] $ git push\n  (2s)\n" {
		t.Errorf("after done: %q", got)
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, false, false)
	if got := FromContext(WithLogger(context.Background(), l)); got != l {
		t.Error("FromContext did not return the stored logger")
	}
	if l.Writer() != &buf {
		t.Error("Writer() did not return the underlying writer")
	}

	fallback := FromContext(context.Background())
	if fallback.Writer() != io.Discard || fallback.IsVerbose() {
		t.Errorf("fallback logger = %+v, want quiet discard logger", fallback)
	}
	fallback.Warnf("dropped")
	fallback.Command("", "git", "status")(time.Second)
}
