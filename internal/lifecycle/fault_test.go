package lifecycle

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/em/internal/cmd"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/status"
)

func newFaultFixture(t *testing.T) (*fixture, *faultGit) {
	t.Helper()
	fg := &faultGit{}
	f := newFixture(t, func(g Git) Git {
		fg.Git = g
		return fg
	})
	return f, fg
}

// TestCopy_RollsBackOnFailure verifies a failed bind removes the new branch.
//
// Scenario: AddWorktree fails after the target branch was created
// Expected: the error is reported and the target branch no longer exists
func TestCopy_RollsBackOnFailure(t *testing.T) {
	t.Parallel()
	f, fg := newFaultFixture(t)
	fg.failAt = "AddWorktree"

	_, err := f.eng.Copy(context.Background(), "main", "exp1")
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, f.tip(t, "exp1"))
	assert.Equal(t, []string{"CreateBranch", "AddWorktree", "DeleteBranch"}, fg.calls)
}

func TestCreateEmpty_RollsBackOnFailure(t *testing.T) {
	t.Parallel()
	f, fg := newFaultFixture(t)
	fg.failAt = "AddWorktree"

	_, err := f.eng.CreateEmpty(context.Background(), "exp1")
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, f.tip(t, "exp1"))
}

// TestCopy_CrashBetweenSteps verifies an interrupted copy is visible and
// can be finished.
//
// Scenario: the process dies after the branch is created but before it is bound
// Expected: the listing shows the branch as not checked out; checkout completes it
func TestCopy_CrashBetweenSteps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, fg := newFaultFixture(t)
	fg.crashAt = "AddWorktree"

	step := runCrashing(func() { _, _ = f.eng.Copy(ctx, "main", "exp1") })
	require.Equal(t, "AddWorktree", step)
	assert.Equal(t, status.NotCheckedOut, f.classes(t)["exp1"])

	fg.crashAt = ""
	res, err := f.eng.Checkout(ctx, "exp1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.repo.Base, "exp1"), res.Path)
	assert.Len(t, f.worktreesFor(t, "exp1"), 1)
}

// TestRemove_CrashBetweenSteps verifies remove can be retried after a crash.
//
// Scenario: the process dies after the worktree is removed but before the branch is deleted
// Expected: the branch lists as not checked out and a second remove finishes
func TestRemove_CrashBetweenSteps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, fg := newFaultFixture(t)
	co, err := f.eng.Checkout(ctx, "main")
	require.NoError(t, err)

	fg.crashAt = "DeleteBranch"
	step := runCrashing(func() { _, _ = f.eng.Remove(ctx, "main", RemoveOptions{}) })
	require.Equal(t, "DeleteBranch", step)
	assert.NoDirExists(t, co.Path)
	assert.Equal(t, status.NotCheckedOut, f.classes(t)["main"])

	fg.crashAt = ""
	_, err = f.eng.Remove(ctx, "main", RemoveOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.tip(t, "main"))
}

// TestRename_CrashAtEachStep interrupts a rename at every step boundary.
//
// Scenario: the process dies before each git step of an autostash rename
// Expected: the old branch is never lost; the remaining state is either untouched
// or a duplicate that removing the old name resolves
func TestRename_CrashAtEachStep(t *testing.T) {
	t.Parallel()

	steps := []string{"Stash", "CreateBranch", "AddWorktree", "StashApply", "RemoveWorktree", "DeleteBranch"}
	for _, crashAt := range steps {
		t.Run(crashAt, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f, fg := newFaultFixture(t)

			old, err := f.eng.Copy(ctx, "main", "exp1")
			require.NoError(t, err)
			f.commit(t, old.Path, "a.txt", "a\n")
			f.write(t, old.Path, "wip.txt", "wip\n")
			tip := f.tip(t, "exp1")

			fg.crashAt = crashAt
			step := runCrashing(func() {
				_, _ = f.eng.Rename(ctx, "exp1", "exp2", RenameOptions{Autostash: true})
			})
			require.Equal(t, crashAt, step)
			fg.crashAt = ""

			oldTip, newTip := f.tip(t, "exp1"), f.tip(t, "exp2")
			require.True(t, oldTip == tip || newTip == tip, "commit lost after crash at %s", crashAt)

			classes := f.classes(t)
			if newTip == "" {
				// Not yet applied: the old branch is intact and the rename can be retried.
				assert.Contains(t, classes, "exp1")
				_, err := f.eng.Rename(ctx, "exp1", "exp2", RenameOptions{Autostash: true})
				require.NoError(t, err)
			} else if oldTip != "" {
				// Duplicate: both names are listed; removing the old one finishes.
				assert.Contains(t, classes, "exp1")
				assert.Contains(t, classes, "exp2")
				_, err := f.eng.Checkout(ctx, "exp2")
				require.NoError(t, err)
				_, err = f.eng.Remove(ctx, "exp1", RemoveOptions{DiscardChanges: true, DiscardCommits: true})
				require.NoError(t, err)
			}

			assert.Empty(t, f.tip(t, "exp1"))
			assert.Equal(t, tip, f.tip(t, "exp2"))
			assert.Len(t, f.worktreesFor(t, "exp2"), 1)
		})
	}
}

func TestRename_FailureRestoresStash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, fg := newFaultFixture(t)

	old, err := f.eng.Copy(ctx, "main", "exp1")
	require.NoError(t, err)
	f.write(t, old.Path, "wip.txt", "wip\n")

	fg.failAt = "AddWorktree"
	_, err = f.eng.Rename(ctx, "exp1", "exp2", RenameOptions{Autostash: true})
	require.ErrorIs(t, err, errInjected)
	assert.FileExists(t, filepath.Join(old.Path, "wip.txt"))
	assert.Empty(t, f.tip(t, "exp2"))
}

func TestPush_InjectedFailureIsRemoteError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, fg := newFaultFixture(t)
	_, err := f.eng.CreateEmpty(ctx, "exp1")
	require.NoError(t, err)

	fg.failAt = "Push"
	_, err = f.eng.Push(ctx, "exp1")
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}

// authGit fails every push the way git does when credentials are refused.
type authGit struct {
	Git
}

func (authGit) Push(ctx context.Context, dir, remote, branch string) (git.PushResult, error) {
	stderr := "fatal: Authentication failed for 'https://example.com/repo.git/'"
	return git.PushResult{}, &git.PushError{
		Output: stderr,
		Err:    &cmd.Error{Stderr: stderr},
	}
}

// TestPush_AuthFailureIsRejected verifies refused credentials are a rejection.
//
// Scenario: git push prints no status line and reports an authentication failure
// Expected: the error is ErrRemoteRejected, not ErrRemoteUnavailable
func TestPush_AuthFailureIsRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, func(g Git) Git { return authGit{Git: g} })
	_, err := f.eng.CreateEmpty(ctx, "exp1")
	require.NoError(t, err)

	_, err = f.eng.Push(ctx, "exp1")
	require.ErrorIs(t, err, ErrRemoteRejected)
	assert.NotErrorIs(t, err, ErrRemoteUnavailable)
	assert.Contains(t, Hint(err), "credentials")
}
