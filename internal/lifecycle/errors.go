package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every code wraps exactly one class, so callers can match
// either the broad class or the specific code with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnsafe        = errors.New("unsafe operation")
	ErrRemote        = errors.New("remote error")
	ErrInconsistent  = errors.New("internal inconsistency")
)

// Error codes.
var (
	ErrBranchNotFound      = fmt.Errorf("branch %w", ErrNotFound)
	ErrSourceNotFound      = fmt.Errorf("source branch %w", ErrNotFound)
	ErrBranchAlreadyExists = fmt.Errorf("branch %w", ErrAlreadyExists)
	ErrTargetAlreadyExists = fmt.Errorf("target branch %w", ErrAlreadyExists)
	ErrDestinationExists   = fmt.Errorf("destination %w", ErrAlreadyExists)
	ErrUnpushedChanges     = fmt.Errorf("unpushed changes: %w", ErrUnsafe)
	ErrUncommittedChanges  = fmt.Errorf("uncommitted changes: %w", ErrUnsafe)
	ErrRemoteUnavailable   = fmt.Errorf("remote unavailable: %w", ErrRemote)
	ErrRemoteRejected      = fmt.Errorf("push rejected: %w", ErrRemote)
)

// Error is returned by every engine operation.
type Error struct {
	Op     string // operation name, e.g. "copy"
	Code   error  // one of the Err* codes or classes above
	Branch string
	Path   string
	Err    error // underlying cause, usually a git failure with its stderr
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Branch != "" {
		b.WriteString(" ")
		b.WriteString(e.Branch)
	}
	b.WriteString(": ")
	b.WriteString(e.Code.Error())
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the code and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// Exit codes returned by the em binary.
const (
	ExitOK            = 0
	ExitError         = 1
	ExitNotFound      = 2
	ExitAlreadyExists = 3
	ExitUnsafe        = 4
	ExitRemote        = 5
	ExitInconsistent  = 70
)

// ExitCode maps an error to the process exit code of its class.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInconsistent):
		return ExitInconsistent
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrAlreadyExists):
		return ExitAlreadyExists
	case errors.Is(err, ErrUnsafe):
		return ExitUnsafe
	case errors.Is(err, ErrRemote):
		return ExitRemote
	}
	return ExitError
}

// Hint returns a short suggestion for resolving err, or "".
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrUncommittedChanges):
		return "commit or stash the changes first, or pass --autostash to carry them over"
	case errors.Is(err, ErrUnpushedChanges):
		return "push the branch first (em push), or pass --force to discard the commits"
	case errors.Is(err, ErrRemoteRejected):
		return "fetch and integrate the remote changes, or check your credentials, then push again"
	case errors.Is(err, ErrRemoteUnavailable):
		return "check the remote URL and your network connection"
	case errors.Is(err, ErrInconsistent):
		return "run 'em doctor' to inspect the repository"
	case errors.Is(err, ErrBranchNotFound), errors.Is(err, ErrSourceNotFound):
		return "run 'em ls -a' to see available branches"
	}
	return ""
}

func newError(op string, code error, branch, path string, cause error) *Error {
	return &Error{Op: op, Code: code, Branch: branch, Path: path, Err: cause}
}
