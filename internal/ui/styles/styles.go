// Package styles provides shared lipgloss styles for UI components.
//
// Colors come from the active [Theme]; call [Init] once after loading the
// configuration. Every package that renders (static, prompt, picker,
// progress) reads the package-level styles below.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme.
var (
	Primary color.Color = DefaultTheme.Primary
	Accent  color.Color = DefaultTheme.Accent
	Success color.Color = DefaultTheme.Success
	Error   color.Color = DefaultTheme.Error
	Muted   color.Color = DefaultTheme.Muted
	Normal  color.Color = DefaultTheme.Normal
	Info    color.Color = DefaultTheme.Info
	Warning color.Color = DefaultTheme.Warning
)

// Common styles
var (
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle   = lipgloss.NewStyle().Foreground(Primary)
	AccentStyle    = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SuccessStyle   = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle     = lipgloss.NewStyle().Foreground(Error)
	MutedStyle     = lipgloss.NewStyle().Foreground(Muted)
	NormalStyle    = lipgloss.NewStyle().Foreground(Normal)
	InfoStyle      = lipgloss.NewStyle().Foreground(Info).Italic(true)
	WarningStyle   = lipgloss.NewStyle().Foreground(Warning)
	HighlightStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true).Underline(true)
)
