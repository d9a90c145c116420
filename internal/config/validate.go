package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Valid enum values for configuration fields.
var (
	ValidThemeNames = []string{"default", "dracula", "nord", "gruvbox", "none"}
	ValidThemeModes = []string{"auto", "light", "dark"}
	ValidHookEvents = []string{"clone", "empty", "cp", "co", "mv", "rm", "push", "all"}
)

func (c *Config) validate() error {
	if err := validateEnum(c.Theme.Name, "theme.name", ValidThemeNames); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return err
	}
	if err := validatePreservePatterns(c.Preserve.Patterns); err != nil {
		return err
	}
	for name, hook := range c.Hooks.Hooks {
		if hook.Command == "" {
			return fmt.Errorf("hook %q has no command", name)
		}
		for _, on := range hook.On {
			if err := validateEnum(on, fmt.Sprintf("hooks.%s.on", name), ValidHookEvents); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// validatePreservePatterns checks that all patterns are valid filepath.Match syntax.
func validatePreservePatterns(patterns []string) error {
	for i, pat := range patterns {
		if _, err := filepath.Match(pat, ""); err != nil {
			return fmt.Errorf("invalid preserve.patterns[%d] %q: %w", i, pat, err)
		}
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
