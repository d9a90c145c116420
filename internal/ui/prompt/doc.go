// Package prompt provides simple interactive prompts.
//
// Prompts render on stderr so stdout stays clean for scripting.
package prompt
