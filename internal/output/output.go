// Package output provides context-aware output for em.
// Stdout carries primary data (tables, paths, diffs, JSON).
// Stderr (via the log package) carries diagnostics.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
)

// CdFileEnv names the file the shell wrapper installed by `em shell-init`
// reads the directory to change into from.
const CdFileEnv = "EM_CD_FILE"

type ctxKey struct{}

// Printer writes primary output to stdout.
type Printer struct {
	w      io.Writer
	cdFile string
}

// New creates a Printer writing to w. When cdFile is non-empty, Navigate
// writes there instead of printing the path.
func New(w io.Writer, cdFile string) *Printer {
	return &Printer{w: w, cdFile: cdFile}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout}
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Navigate hands a directory to the caller's shell. With the shell wrapper
// active the path goes to the wrapper's file, otherwise it is printed so
// `cd "$(em cd x)"` works.
func (p *Printer) Navigate(path string) error {
	if p.cdFile == "" {
		p.Println(path)
		return nil
	}
	if err := os.WriteFile(p.cdFile, []byte(path+"\n"), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", CdFileEnv, err)
	}
	return nil
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}
