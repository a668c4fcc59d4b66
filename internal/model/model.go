// Package model defines core data structures for meteor3lint.
package model

import (
	"fmt"
	"strings"
)

// Severity is the level a rule reports at.
type Severity int

const (
	Off Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Off:
		return "off"
	case Warn:
		return "warn"
	case Error:
		return "error"
	}
	return "unknown"
}

// ParseSeverity accepts the ESLint spellings: off/warn/error, warning, 0/1/2.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return Off, nil
	case "warn", "warning", "1":
		return Warn, nil
	case "error", "2":
		return Error, nil
	}
	return Off, fmt.Errorf("invalid severity %q (want off, warn or error)", s)
}

// Fix is a single text edit. Start == End means an insertion.
type Fix struct {
	Start uint32
	End   uint32
	Text  string
}

// Diagnostic is one problem found in a file.
type Diagnostic struct {
	Rule      string
	MessageID string
	Data      map[string]string
	Message   string
	Severity  Severity
	Line      int // 1-based
	Column    int // 1-based, in bytes
	StartByte uint32
	EndByte   uint32
	Fix       *Fix
	// Fatal marks a parse failure; no rules ran for the file.
	Fatal bool
}

// FileResult holds the outcome of linting a single source file.
type FileResult struct {
	Path        string
	Language    string
	Diagnostics []Diagnostic
	// Output is the fixed source when fixing was requested and changed the file.
	Output []byte
	Rank   float64
}

// Counts returns the number of error and warning diagnostics.
func (f *FileResult) Counts() (errors, warnings int) {
	for i := range f.Diagnostics {
		switch f.Diagnostics[i].Severity {
		case Error:
			errors++
		case Warn:
			warnings++
		}
	}
	return errors, warnings
}

// Fixable returns the number of error and warning diagnostics that carry a fix.
func (f *FileResult) Fixable() (errors, warnings int) {
	for i := range f.Diagnostics {
		d := &f.Diagnostics[i]
		if d.Fix == nil {
			continue
		}
		switch d.Severity {
		case Error:
			errors++
		case Warn:
			warnings++
		}
	}
	return errors, warnings
}

// Report is the complete result of one lint run, ready for formatting.
type Report struct {
	Root  string
	Files []FileResult
}

// Totals sums error, warning and fixable counts across all files.
func (r *Report) Totals() (errors, warnings, fixableErrors, fixableWarnings int) {
	for i := range r.Files {
		e, w := r.Files[i].Counts()
		fe, fw := r.Files[i].Fixable()
		errors += e
		warnings += w
		fixableErrors += fe
		fixableWarnings += fw
	}
	return errors, warnings, fixableErrors, fixableWarnings
}
