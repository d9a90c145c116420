package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Status is the working state of a checked-out branch.
type Status struct {
	Dirty     bool
	HasRemote bool // a remote-tracking ref was available to compare against
	Ahead     int  // commits on the branch missing from the remote ref
	Behind    int  // commits on the remote ref missing from the branch
}

// IsDirty reports whether the worktree has uncommitted changes or untracked files.
func IsDirty(ctx context.Context, path string) (bool, error) {
	out, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("status of %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// AheadBehind counts commits unique to each side of local...remote.
func AheadBehind(ctx context.Context, dir, local, remote string) (ahead, behind int, err error) {
	line, err := lineGit(ctx, dir, "rev-list", "--left-right", "--count", local+"..."+remote)
	if err != nil {
		return 0, 0, fmt.Errorf("compare %s with %s: %w", local, remote, err)
	}
	return parseLeftRight(line)
}

func parseLeftRight(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", line)
	}
	left, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", line)
	}
	right, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", line)
	}
	return left, right, nil
}

// StatusOf probes a checked-out branch. remoteRef is the remote-tracking ref
// to compare against, or "" when the branch has none.
func StatusOf(ctx context.Context, dir string, wt Worktree, remoteRef string) (Status, error) {
	dirty, err := IsDirty(ctx, wt.Path)
	if err != nil {
		return Status{}, err
	}
	st := Status{Dirty: dirty}
	if remoteRef == "" || wt.Branch == "" {
		return st, nil
	}
	ahead, behind, err := AheadBehind(ctx, dir, LocalRef(wt.Branch), remoteRef)
	if err != nil {
		return st, err
	}
	st.HasRemote = true
	st.Ahead, st.Behind = ahead, behind
	return st, nil
}
