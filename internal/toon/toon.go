// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/meteor3lint/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a lint Report into TOON format. Files without problems
// are left out of the tables.
func Encode(r *model.Report) string {
	var parts []string

	errs, warns, fixErrs, fixWarns := r.Totals()
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))
	parts = append(parts, fmt.Sprintf("errors: %d", errs))
	parts = append(parts, fmt.Sprintf("warnings: %d", warns))
	parts = append(parts, fmt.Sprintf("fixable: %d", fixErrs+fixWarns))

	var fileRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		if len(fr.Diagnostics) == 0 {
			continue
		}
		e, w := fr.Counts()
		fileRows = append(fileRows, []string{
			fr.Path,
			fr.Language,
			strconv.Itoa(e),
			strconv.Itoa(w),
			fmt.Sprintf("%.4f", fr.Rank),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "errors", "warnings", "rank"}, fileRows))

	var problemRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		for j := range fr.Diagnostics {
			d := &fr.Diagnostics[j]
			problemRows = append(problemRows, []string{
				fr.Path,
				strconv.Itoa(d.Line),
				strconv.Itoa(d.Column),
				d.Severity.String(),
				d.Rule,
				d.Message,
				yesNo(d.Fix != nil),
			})
		}
	}
	parts = append(parts, formatTabular("problems", []string{"file", "line", "column", "severity", "rule", "message", "fixable"}, problemRows))

	return strings.Join(parts, "\n")
}

// yesNo spells a flag so the cell is not read back as a quoted keyword.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
