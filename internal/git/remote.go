package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRemoteRefNotFound is returned by FetchBranch when the remote has no
// branch of that name.
var ErrRemoteRefNotFound = errors.New("remote branch not found")

// InitBare creates a bare repository at path.
func InitBare(ctx context.Context, path string) error {
	if err := runGit(ctx, "", "init", "--bare", "--quiet", path); err != nil {
		return fmt.Errorf("init %s: %w", path, err)
	}
	return nil
}

// AddRemote registers a remote with the default fetch refspec.
func AddRemote(ctx context.Context, dir, name, url string) error {
	if err := runGit(ctx, dir, "remote", "add", name, url); err != nil {
		return fmt.Errorf("add remote %s: %w", name, err)
	}
	return nil
}

// RemoteURL returns the configured URL of remote.
func RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	return lineGit(ctx, dir, "remote", "get-url", remote)
}

// LsRemote lists the branches of a remote (name or URL). It is the cheapest
// way to check that a remote is reachable.
func LsRemote(ctx context.Context, dir, remote string) ([]Branch, error) {
	out, err := outputGit(ctx, dir, "ls-remote", "--heads", remote)
	if err != nil {
		return nil, fmt.Errorf("ls-remote %s: %w", remote, err)
	}
	var branches []Branch
	for _, line := range splitLines(out) {
		commit, ref, ok := strings.Cut(line, "\t")
		if !ok || !strings.HasPrefix(ref, "refs/heads/") {
			continue
		}
		branches = append(branches, Branch{
			Name:   strings.TrimPrefix(ref, "refs/heads/"),
			Origin: Remote,
			Commit: commit,
		})
	}
	return branches, nil
}

// Fetch refreshes all remote-tracking refs of remote, pruning deleted ones.
func Fetch(ctx context.Context, dir, remote string) error {
	if err := runGit(ctx, dir, "fetch", "--prune", "--quiet", remote); err != nil {
		return fmt.Errorf("fetch %s: %w", remote, err)
	}
	return nil
}

// FetchBranch updates refs/remotes/<remote>/<name> from the remote.
// Returns ErrRemoteRefNotFound (wrapped) when the remote lacks the branch.
func FetchBranch(ctx context.Context, dir, remote, name string) error {
	refspec := "+" + LocalRef(name) + ":" + RemoteRef(remote, name)
	if err := runGit(ctx, dir, "fetch", "--quiet", remote, refspec); err != nil {
		if strings.Contains(err.Error(), "couldn't find remote ref") {
			return fmt.Errorf("%w: %s/%s", ErrRemoteRefNotFound, remote, name)
		}
		return fmt.Errorf("fetch %s/%s: %w", remote, name, err)
	}
	return nil
}
