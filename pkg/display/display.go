// Package display provides the two-line text display port and its
// backends.
package display

import (
	"fmt"
	"io"
	"strings"
)

// Display is the text surface the analyzer renders to. Rows are
// zero-based; text longer than the surface width is truncated.
type Display interface {
	Clear() error
	WriteLine(row int, text string) error
	Close() error
}

var _ Display = (*Console)(nil)
var _ Display = (*LCD)(nil)

// Console renders display lines to a writer. It stands in for the LCD
// during development and in mock mode.
type Console struct {
	w    io.Writer
	rows int
	cols int
}

// NewConsole creates a console display of the given geometry.
func NewConsole(w io.Writer, rows, cols int) *Console {
	return &Console{w: w, rows: rows, cols: cols}
}

// Clear prints a separator marking a fresh screen.
func (c *Console) Clear() error {
	_, err := fmt.Fprintf(c.w, "+%s+\n", strings.Repeat("-", c.cols))
	return err
}

// WriteLine prints one display row.
func (c *Console) WriteLine(row int, text string) error {
	if row < 0 || row >= c.rows {
		return fmt.Errorf("display row %d out of range", row)
	}
	if len(text) > c.cols {
		text = text[:c.cols]
	}
	_, err := fmt.Fprintf(c.w, "|%-*s|\n", c.cols, text)
	return err
}

// Close is a no-op for the console backend.
func (c *Console) Close() error {
	return nil
}
