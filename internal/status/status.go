// Package status classifies branches for listings.
//
// Classification is derived from one git.Snapshot and never stored.
package status

import (
	"slices"
	"strings"

	"github.com/raphi011/em/internal/git"
)

// Class is the listing class of a branch.
type Class int

const (
	Clean Class = iota
	NotPushed
	Modified
	NotCheckedOut
	RemoteOnly
	// Unknown marks a checked-out, unmodified branch whose remote state
	// could not be determined.
	Unknown
)

var classNames = [...]string{
	Clean:         "clean",
	NotPushed:     "not pushed",
	Modified:      "modified",
	NotCheckedOut: "not checked out",
	RemoteOnly:    "remote only",
	Unknown:       "unknown",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "invalid"
	}
	return classNames[c]
}

// MarshalText encodes the class by name for JSON output.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(c.String(), " ", "_")), nil
}

// ControlPrefix marks branches reserved for em itself. They are never listed.
const ControlPrefix = "__"

// State is what Classify decides on.
type State struct {
	Local       bool // a local branch exists
	CheckedOut  bool // a worktree is bound to the branch
	Dirty       bool
	HasRemote   bool // a remote-tracking ref exists
	RemoteKnown bool // remote comparison is trustworthy
	Ahead       int
}

// Classify returns the class of a branch. When several apply, the first of
// RemoteOnly, NotCheckedOut, Modified, NotPushed wins.
func Classify(s State) Class {
	switch {
	case !s.Local:
		return RemoteOnly
	case !s.CheckedOut:
		return NotCheckedOut
	case s.Dirty:
		return Modified
	case !s.RemoteKnown:
		return Unknown
	case !s.HasRemote || s.Ahead > 0:
		return NotPushed
	}
	return Clean
}

// Entry is one row of a listing.
type Entry struct {
	Branch string `json:"branch"`
	Class  Class  `json:"status"`
	Path   string `json:"path,omitempty"`
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
	Error  string `json:"error,omitempty"`
}

// Options control Aggregate.
type Options struct {
	All bool // include remote-only branches
}

// Aggregate classifies every branch of snap, sorted by name. Control
// branches are skipped.
func Aggregate(snap *git.Snapshot, opts Options) []Entry {
	var entries []Entry
	seen := make(map[string]bool)

	for _, b := range snap.Local {
		if strings.HasPrefix(b.Name, ControlPrefix) {
			continue
		}
		seen[b.Name] = true
		entries = append(entries, localEntry(snap, b))
	}
	if opts.All {
		for _, b := range snap.Remotes {
			if seen[b.Name] || strings.HasPrefix(b.Name, ControlPrefix) {
				continue
			}
			entries = append(entries, Entry{Branch: b.Name, Class: RemoteOnly, Commit: b.Commit})
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Branch, b.Branch) })
	return entries
}

func localEntry(snap *git.Snapshot, b git.Branch) Entry {
	e := Entry{Branch: b.Name, Commit: b.Commit}
	st := State{Local: true}

	if wts := snap.WorktreesFor(b.Name); len(wts) > 0 && !wts[0].Prunable {
		e.Path = wts[0].Path
		st.CheckedOut = true
	}
	if st.CheckedOut {
		probe, ok := snap.Status[b.Name]
		if err := snap.StatusErr[b.Name]; err != nil || !ok {
			if err != nil {
				e.Error = err.Error()
			}
			e.Class = Unknown
			return e
		}
		e.Dirty, e.Ahead, e.Behind = probe.Dirty, probe.Ahead, probe.Behind
		st.Dirty = probe.Dirty
		st.Ahead = probe.Ahead
		st.HasRemote = probe.HasRemote
		st.RemoteKnown = snap.RemoteErr == nil
	}
	e.Class = Classify(st)
	return e
}

// Counts tallies entries per class.
func Counts(entries []Entry) map[Class]int {
	counts := make(map[Class]int)
	for _, e := range entries {
		counts[e.Class]++
	}
	return counts
}
