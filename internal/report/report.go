// Package report renders lint results for people and for tools.
package report

import (
	"fmt"
	"io"

	"github.com/phobologic/meteor3lint/internal/model"
	"github.com/phobologic/meteor3lint/internal/toon"
)

// Output formats.
const (
	Stylish = "stylish"
	JSON    = "json"
	TOON    = "toon"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{Stylish, JSON, TOON}
}

// Options configures rendering.
type Options struct {
	// Color enables ANSI colours in the stylish format.
	Color bool
}

// Write renders r to w in the named format.
func Write(w io.Writer, format string, r *model.Report, opts Options) error {
	switch format {
	case Stylish, "":
		return writeStylish(w, r, opts)
	case JSON:
		return writeJSON(w, r)
	case TOON:
		_, err := fmt.Fprintln(w, toon.Encode(r))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
