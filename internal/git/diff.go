package git

import (
	"context"
	"fmt"
)

// DiffOptions selects the diff format.
type DiffOptions struct {
	NameOnly bool
	Stat     bool
}

// Diff returns the diff between two commits or refs.
func Diff(ctx context.Context, dir, from, to string, opts DiffOptions) (string, error) {
	args := []string{"diff", "--no-color"}
	switch {
	case opts.NameOnly:
		args = append(args, "--name-only")
	case opts.Stat:
		args = append(args, "--stat")
	}
	args = append(args, from, to, "--")
	out, err := outputGit(ctx, dir, args...)
	if err != nil {
		return "", fmt.Errorf("diff %s %s: %w", from, to, err)
	}
	return string(out), nil
}
