package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphi011/em/internal/cmd"
)

// PushResult describes the outcome for the pushed ref.
type PushResult struct {
	Flag    byte   // porcelain flag: ' ', '+', '*', '=', '!', '-'
	Summary string // e.g. "[new branch]", "[up to date]", "abc..def"
}

// UpToDate reports whether the remote already had the commit.
func (r PushResult) UpToDate() bool { return r.Flag == '=' }

// Created reports whether the push created the remote branch.
func (r PushResult) Created() bool { return r.Flag == '*' }

// PushError carries git's verbatim output for a rejected push.
type PushError struct {
	Result PushResult
	Output string // porcelain status line and stderr
	Err    error
}

func (e *PushError) Error() string { return e.Output }

func (e *PushError) Unwrap() error { return e.Err }

// Push pushes the local branch to the same name on remote and records the
// remote branch as upstream.
func Push(ctx context.Context, dir, remote, branch string) (PushResult, error) {
	refspec := LocalRef(branch) + ":" + LocalRef(branch)
	out, err := outputGit(ctx, dir, "push", "--porcelain", "--set-upstream", remote, refspec)
	result, _ := parsePushPorcelain(string(out), refspec)
	if err != nil {
		msg := err.Error()
		var cmdErr *cmd.Error
		if errors.As(err, &cmdErr) {
			msg = strings.TrimSpace(strings.Join([]string{statusLine(string(out), refspec), cmdErr.Stderr}, "\n"))
		}
		return result, &PushError{Result: result, Output: msg, Err: err}
	}
	return result, nil
}

// parsePushPorcelain finds the status line for refspec in `git push --porcelain`
// output: "<flag>\t<from>:<to>\t<summary> (<reason>)".
func parsePushPorcelain(out, refspec string) (PushResult, bool) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 || line[1] != '\t' {
			continue
		}
		fields := strings.SplitN(line[2:], "\t", 2)
		if fields[0] != refspec {
			continue
		}
		r := PushResult{Flag: line[0]}
		if len(fields) == 2 {
			r.Summary = fields[1]
		}
		return r, true
	}
	return PushResult{}, false
}

func statusLine(out, refspec string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, refspec) {
			return line
		}
	}
	return ""
}

// authFailures are fragments git and its transports print when the remote
// refuses the credentials.
var authFailures = []string{
	"Authentication failed",
	"Permission denied",
	"could not read Username",
	"The requested URL returned error: 403",
}

// Rejected reports whether the remote refused the push, either with a '!'
// status line or by refusing the credentials.
func (e *PushError) Rejected() bool {
	if e.Result.Flag == '!' {
		return true
	}
	for _, s := range authFailures {
		if strings.Contains(e.Output, s) {
			return true
		}
	}
	return false
}

// PushRejected reports whether err is a push the remote refused.
func PushRejected(err error) bool {
	var pushErr *PushError
	return errors.As(err, &pushErr) && pushErr.Rejected()
}

// String formats the result for logs.
func (r PushResult) String() string {
	return fmt.Sprintf("%c %s", r.Flag, r.Summary)
}
