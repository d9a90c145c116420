package styles

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/raphi011/em/internal/config"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // borders, headers
	Accent  color.Color // selected items, matches
	Success color.Color // clean branches
	Error   color.Color // errors, remote-only branches
	Muted   color.Color // inactive text, not checked out
	Normal  color.Color // standard text
	Info    color.Color // paths, hints
	Warning color.Color // modified, not pushed
}

// themeFamily groups light and dark variants of a theme
type themeFamily struct {
	Light *Theme // nil if no light variant
	Dark  *Theme // nil if no dark variant
}

var (
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),
		Accent:  lipgloss.Color("212"),
		Success: lipgloss.Color("82"),
		Error:   lipgloss.Color("196"),
		Muted:   lipgloss.Color("240"),
		Normal:  lipgloss.Color("252"),
		Info:    lipgloss.Color("244"),
		Warning: lipgloss.Color("214"),
	}

	DefaultLightTheme = Theme{
		Primary: lipgloss.Color("25"),
		Accent:  lipgloss.Color("162"),
		Success: lipgloss.Color("28"),
		Error:   lipgloss.Color("160"),
		Muted:   lipgloss.Color("246"),
		Normal:  lipgloss.Color("236"),
		Info:    lipgloss.Color("242"),
		Warning: lipgloss.Color("130"),
	}

	DraculaTheme = Theme{
		Primary: lipgloss.Color("#bd93f9"), // purple
		Accent:  lipgloss.Color("#ff79c6"), // pink
		Success: lipgloss.Color("#50fa7b"), // green
		Error:   lipgloss.Color("#ff5555"), // red
		Muted:   lipgloss.Color("#6272a4"), // comment
		Normal:  lipgloss.Color("#f8f8f2"), // foreground
		Info:    lipgloss.Color("#8be9fd"), // cyan
		Warning: lipgloss.Color("#ffb86c"), // orange
	}

	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"), // nord8
		Accent:  lipgloss.Color("#b48ead"), // nord15
		Success: lipgloss.Color("#a3be8c"), // nord14
		Error:   lipgloss.Color("#bf616a"), // nord11
		Muted:   lipgloss.Color("#4c566a"), // nord3
		Normal:  lipgloss.Color("#eceff4"), // nord6
		Info:    lipgloss.Color("#81a1c1"), // nord9
		Warning: lipgloss.Color("#ebcb8b"), // nord13
	}

	NordLightTheme = Theme{
		Primary: lipgloss.Color("#5e81ac"), // nord10
		Accent:  lipgloss.Color("#b48ead"),
		Success: lipgloss.Color("#a3be8c"),
		Error:   lipgloss.Color("#bf616a"),
		Muted:   lipgloss.Color("#9a9a9a"),
		Normal:  lipgloss.Color("#2e3440"), // nord0
		Info:    lipgloss.Color("#81a1c1"),
		Warning: lipgloss.Color("#d08770"), // nord12
	}

	GruvboxTheme = Theme{
		Primary: lipgloss.Color("#83a598"),
		Accent:  lipgloss.Color("#d3869b"),
		Success: lipgloss.Color("#b8bb26"),
		Error:   lipgloss.Color("#fb4934"),
		Muted:   lipgloss.Color("#665c54"),
		Normal:  lipgloss.Color("#ebdbb2"),
		Info:    lipgloss.Color("#8ec07c"),
		Warning: lipgloss.Color("#fabd2f"),
	}

	GruvboxLightTheme = Theme{
		Primary: lipgloss.Color("#076678"),
		Accent:  lipgloss.Color("#8f3f71"),
		Success: lipgloss.Color("#79740e"),
		Error:   lipgloss.Color("#9d0006"),
		Muted:   lipgloss.Color("#928374"),
		Normal:  lipgloss.Color("#3c3836"),
		Info:    lipgloss.Color("#427b58"),
		Warning: lipgloss.Color("#b57614"),
	}

	// NoneTheme keeps bold and underline but uses terminal default colors.
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

var themeFamilies = map[string]themeFamily{
	"none":    {Light: &NoneTheme, Dark: &NoneTheme},
	"default": {Light: &DefaultLightTheme, Dark: &DefaultTheme},
	"dracula": {Dark: &DraculaTheme},
	"nord":    {Light: &NordLightTheme, Dark: &NordTheme},
	"gruvbox": {Light: &GruvboxLightTheme, Dark: &GruvboxTheme},
}

var currentTheme = DefaultTheme

// Current returns the active theme
func Current() Theme {
	return currentTheme
}

// Init activates the theme selected by cfg. Names and modes are validated
// by the config package; unknown values fall back to the default.
func Init(cfg config.ThemeConfig) {
	t := selectTheme(cfg, func() bool {
		return lipgloss.HasDarkBackground(os.Stdin, os.Stderr)
	})
	currentTheme = t
	applyTheme(t)
}

func selectTheme(cfg config.ThemeConfig, isDark func() bool) Theme {
	family, ok := themeFamilies[cfg.Name]
	if !ok {
		family = themeFamilies["default"]
	}

	var t *Theme
	switch cfg.Mode {
	case "light":
		t = family.Light
	case "dark":
		t = family.Dark
	default:
		if isDark() {
			t = family.Dark
		} else {
			t = family.Light
		}
	}
	if t == nil {
		if family.Dark != nil {
			t = family.Dark
		} else {
			t = family.Light
		}
	}
	return *t
}

func applyTheme(t Theme) {
	Primary = t.Primary
	Accent = t.Accent
	Success = t.Success
	Error = t.Error
	Muted = t.Muted
	Normal = t.Normal
	Info = t.Info
	Warning = t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
	InfoStyle = lipgloss.NewStyle().Foreground(t.Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	HighlightStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
}
