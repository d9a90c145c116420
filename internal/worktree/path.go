// Package worktree maps branch names to worktree directories.
//
// Each branch gets exactly one directory directly under the worktrees root.
// The directory name is the branch name with every byte outside
// [A-Za-z0-9._+@,=-] written as %XX (uppercase hex), so "feature/x" becomes
// "feature%2Fx" and no two branches share a directory. A leading dot is
// escaped too, so no branch lands on "." or ".." or a hidden directory such
// as ".em". The mapping is pure and never touches the filesystem.
//
// Case-insensitive filesystems can still collide branches that differ only
// in case ("Exp" and "exp"); git itself has the same limitation for refs.
package worktree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const upperHex = "0123456789ABCDEF"

// ErrNotWorktreePath is returned by BranchFor for paths that no branch maps to.
var ErrNotWorktreePath = errors.New("not a worktree path")

// Resolver derives worktree paths below Root.
type Resolver struct {
	Root string
}

// PathFor returns the worktree directory for branch.
func (r Resolver) PathFor(branch string) string {
	return filepath.Join(r.Root, Escape(branch))
}

// BranchFor returns the branch whose worktree directory is path.
func (r Resolver) BranchFor(path string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(r.Root), filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotWorktreePath, path)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrNotWorktreePath, path, r.Root)
	}
	if strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%w: %s is nested below %s", ErrNotWorktreePath, path, r.Root)
	}
	branch, err := Unescape(rel)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotWorktreePath, path, err)
	}
	return branch, nil
}

func isSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("._+@,=-", c) >= 0
}

// Escape encodes a branch name as a single path element.
func Escape(branch string) string {
	var b strings.Builder
	b.Grow(len(branch))
	for i := 0; i < len(branch); i++ {
		c := branch[i]
		if isSafe(c) && (i > 0 || c != '.') {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

// Unescape reverses Escape. Only the canonical encoding is accepted: every
// unsafe byte escaped, safe bytes never escaped (except a leading dot), hex
// digits uppercase.
func Unescape(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty name")
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '%' {
			if !isSafe(c) || (i == 0 && c == '.') {
				return "", fmt.Errorf("unescaped byte %q at offset %d", c, i)
			}
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(name) {
			return "", fmt.Errorf("truncated escape at offset %d", i)
		}
		hi, ok1 := fromUpperHex(name[i+1])
		lo, ok2 := fromUpperHex(name[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("invalid escape %q at offset %d", name[i:i+3], i)
		}
		decoded := hi<<4 | lo
		if isSafe(decoded) && (i > 0 || decoded != '.') {
			return "", fmt.Errorf("needless escape %q at offset %d", name[i:i+3], i)
		}
		b.WriteByte(decoded)
		i += 2
	}
	return b.String(), nil
}

func fromUpperHex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
