package styles

import (
	"charm.land/lipgloss/v2"

	"github.com/raphi011/em/internal/status"
)

// Symbol returns the marker shown in front of a branch of class c.
func Symbol(c status.Class) string {
	switch c {
	case status.Clean:
		return "✓"
	case status.NotPushed:
		return "↑"
	case status.Modified:
		return "●"
	case status.NotCheckedOut:
		return "○"
	case status.RemoteOnly:
		return "☁"
	default:
		return "?"
	}
}

// ClassStyle returns the style used to render class c.
func ClassStyle(c status.Class) lipgloss.Style {
	switch c {
	case status.Clean:
		return SuccessStyle
	case status.NotPushed, status.Modified:
		return WarningStyle
	case status.NotCheckedOut:
		return MutedStyle
	case status.RemoteOnly:
		return PrimaryStyle
	default:
		return ErrorStyle
	}
}

// FormatClass renders symbol and class name in the class color.
func FormatClass(c status.Class) string {
	return ClassStyle(c).Render(Symbol(c) + " " + c.String())
}
