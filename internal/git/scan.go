package git

import (
	"context"
	"fmt"
)

// ScanMode selects how much work a Scan does.
type ScanMode int

const (
	// ScanFast reads local refs and worktrees only. Remote state comes from
	// the remote-tracking refs as last fetched.
	ScanFast ScanMode = iota
	// ScanFull refreshes remote-tracking refs with a fetch first.
	ScanFull
)

// ScanPhase names the step a Scan is about to run.
type ScanPhase int

const (
	PhaseFetch  ScanPhase = iota // refreshing remote-tracking refs
	PhaseStatus                  // reading refs, worktrees and per-worktree status
)

// Snapshot is the repository state derived by one Scan. It is never reused
// across invocations.
type Snapshot struct {
	Remote    string
	Local     []Branch
	Remotes   []Branch
	Worktrees []Worktree

	// Status holds probes for branches with a worktree, keyed by branch name.
	Status map[string]Status
	// StatusErr records branches whose probe failed.
	StatusErr map[string]error
	// RemoteErr is set when a full scan could not refresh remote state.
	// Remote comparisons are then unknown rather than stale.
	RemoteErr error
}

// LocalBranch returns the local branch with the given name.
func (s *Snapshot) LocalBranch(name string) (Branch, bool) {
	return findBranch(s.Local, name)
}

// RemoteBranch returns the remote-tracking branch with the given name.
func (s *Snapshot) RemoteBranch(name string) (Branch, bool) {
	return findBranch(s.Remotes, name)
}

// WorktreesFor returns every worktree bound to branch.
func (s *Snapshot) WorktreesFor(branch string) []Worktree {
	var out []Worktree
	for _, wt := range s.Worktrees {
		if wt.Branch == branch {
			out = append(out, wt)
		}
	}
	return out
}

func findBranch(branches []Branch, name string) (Branch, bool) {
	for _, b := range branches {
		if b.Name == name {
			return b, true
		}
	}
	return Branch{}, false
}

// Scan reads branches, worktrees and per-worktree status from the
// repository at dir. Probes run one after another.
func Scan(ctx context.Context, dir, remote string, mode ScanMode) (*Snapshot, error) {
	return ScanWithProgress(ctx, dir, remote, mode, nil)
}

// ScanWithProgress is Scan calling onPhase before each phase starts.
func ScanWithProgress(ctx context.Context, dir, remote string, mode ScanMode, onPhase func(ScanPhase)) (*Snapshot, error) {
	report := func(p ScanPhase) {
		if onPhase != nil {
			onPhase(p)
		}
	}
	snap := &Snapshot{
		Remote:    remote,
		Status:    make(map[string]Status),
		StatusErr: make(map[string]error),
	}

	if mode == ScanFull {
		report(PhaseFetch)
		if err := Fetch(ctx, dir, remote); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			snap.RemoteErr = err
		}
	}

	report(PhaseStatus)
	branches, err := ListBranches(ctx, dir, remote)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if b.Origin == Remote {
			snap.Remotes = append(snap.Remotes, b)
		} else {
			snap.Local = append(snap.Local, b)
		}
	}

	snap.Worktrees, err = ListWorktrees(ctx, dir)
	if err != nil {
		return nil, err
	}

	for _, wt := range snap.Worktrees {
		if wt.Branch == "" || wt.Bare || wt.Prunable {
			continue
		}
		remoteRef := ""
		if snap.RemoteErr == nil {
			if rb, ok := snap.RemoteBranch(wt.Branch); ok {
				remoteRef = rb.Ref(remote)
			}
		}
		st, err := StatusOf(ctx, dir, wt, remoteRef)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			snap.StatusErr[wt.Branch] = fmt.Errorf("%s: %w", wt.Path, err)
			continue
		}
		snap.Status[wt.Branch] = st
	}

	return snap, nil
}
