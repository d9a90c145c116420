package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphi011/em/internal/cmd"
)

// Origin tells where a branch lives.
type Origin int

const (
	// Local branches live under refs/heads.
	Local Origin = iota
	// Remote branches are remote-tracking refs under refs/remotes/<remote>.
	Remote
)

func (o Origin) String() string {
	if o == Remote {
		return "remote"
	}
	return "local"
}

// Branch is a branch as reported by git.
type Branch struct {
	Name     string // short name without refs/heads/ or refs/remotes/<remote>/
	Origin   Origin
	Commit   string
	Upstream string // full upstream ref of a local branch, if configured
}

// Ref returns the full ref name for b under the given remote.
func (b Branch) Ref(remote string) string {
	if b.Origin == Remote {
		return RemoteRef(remote, b.Name)
	}
	return LocalRef(b.Name)
}

// LocalRef returns refs/heads/<name>.
func LocalRef(name string) string { return "refs/heads/" + name }

// RemoteRef returns refs/remotes/<remote>/<name>.
func RemoteRef(remote, name string) string { return "refs/remotes/" + remote + "/" + name }

// ListBranches returns local branches and the remote-tracking branches of
// remote, read from the local ref store (no network).
func ListBranches(ctx context.Context, dir, remote string) ([]Branch, error) {
	remotePrefix := "refs/remotes/" + remote + "/"
	out, err := outputGit(ctx, dir, "for-each-ref",
		"--format=%(refname)%00%(objectname)%00%(upstream)",
		"refs/heads", strings.TrimSuffix(remotePrefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return parseBranches(out, remotePrefix), nil
}

func parseBranches(out []byte, remotePrefix string) []Branch {
	var branches []Branch
	for _, line := range splitLines(out) {
		fields := strings.Split(line, "\x00")
		if len(fields) < 2 {
			continue
		}
		ref, commit := fields[0], fields[1]
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			b := Branch{Name: strings.TrimPrefix(ref, "refs/heads/"), Origin: Local, Commit: commit}
			if len(fields) > 2 {
				b.Upstream = fields[2]
			}
			branches = append(branches, b)
		case strings.HasPrefix(ref, remotePrefix):
			name := strings.TrimPrefix(ref, remotePrefix)
			if name == "HEAD" {
				continue
			}
			branches = append(branches, Branch{Name: name, Origin: Remote, Commit: commit})
		}
	}
	return branches
}

// RevParse resolves ref to a commit id. The boolean is false when the ref
// does not exist.
func RevParse(ctx context.Context, dir, ref string) (string, bool, error) {
	out, err := outputGit(ctx, dir, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		var cmdErr *cmd.Error
		if errors.As(err, &cmdErr) && cmdErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(out)), true, nil
}

// CreateBranch creates a local branch at start without configuring an upstream.
func CreateBranch(ctx context.Context, dir, name, start string) error {
	if err := runGit(ctx, dir, "branch", "--no-track", name, start); err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	return nil
}

// CreateTrackingBranch creates a local branch from <remote>/<name> and sets
// it as upstream.
func CreateTrackingBranch(ctx context.Context, dir, remote, name string) error {
	if err := runGit(ctx, dir, "branch", "--track", name, RemoteRef(remote, name)); err != nil {
		return fmt.Errorf("create branch %s from %s: %w", name, remote, err)
	}
	return nil
}

// DeleteBranch deletes a local branch; force uses -D.
func DeleteBranch(ctx context.Context, dir, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := runGit(ctx, dir, "branch", flag, name); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	return nil
}

// ContainedIn returns the refs under prefix whose history contains commit.
func ContainedIn(ctx context.Context, dir, commit, prefix string) ([]string, error) {
	out, err := outputGit(ctx, dir, "for-each-ref", "--contains", commit, "--format=%(refname)", prefix)
	if err != nil {
		return nil, fmt.Errorf("refs containing %s: %w", commit, err)
	}
	return splitLines(out), nil
}

// CreateRootCommit writes a parentless commit with an empty tree and returns
// its id. No ref is updated.
func CreateRootCommit(ctx context.Context, dir, message string) (string, error) {
	tree, err := lineGit(ctx, dir, "mktree")
	if err != nil {
		return "", fmt.Errorf("write empty tree: %w", err)
	}
	commit, err := lineGit(ctx, dir, "commit-tree", tree, "-m", message)
	if err != nil {
		return "", fmt.Errorf("write root commit: %w", err)
	}
	return commit, nil
}
