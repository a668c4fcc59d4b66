package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/phobologic/meteor3lint/internal/model"
)

type palette struct {
	path, pos, rule *color.Color
	errorSev        *color.Color
	warnSev         *color.Color
	summaryError    *color.Color
	summaryWarn     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:         color.New(color.Underline),
		pos:          color.New(color.Faint),
		rule:         color.New(color.Faint),
		errorSev:     color.New(color.FgRed),
		warnSev:      color.New(color.FgYellow),
		summaryError: color.New(color.FgRed, color.Bold),
		summaryWarn:  color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.pos, p.rule, p.errorSev, p.warnSev, p.summaryError, p.summaryWarn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

type stylishRow struct {
	pos, sev, msg, rule string
	severity            model.Severity
}

// writeStylish prints one block per file with problems, columns aligned
// within the block, followed by a summary line.
func writeStylish(w io.Writer, r *model.Report, opts Options) error {
	p := newPalette(opts.Color)
	bw := bufio.NewWriter(w)

	for i := range r.Files {
		fr := &r.Files[i]
		if len(fr.Diagnostics) == 0 {
			continue
		}

		rows := make([]stylishRow, 0, len(fr.Diagnostics))
		var posW, sevW, msgW int
		for _, d := range fr.Diagnostics {
			row := stylishRow{
				pos:      fmt.Sprintf("%d:%d", d.Line, d.Column),
				sev:      severityLabel(d.Severity),
				msg:      strings.TrimSpace(d.Message),
				rule:     d.Rule,
				severity: d.Severity,
			}
			posW = max(posW, len(row.pos))
			sevW = max(sevW, len(row.sev))
			msgW = max(msgW, runewidth.StringWidth(row.msg))
			rows = append(rows, row)
		}

		_, _ = fmt.Fprintf(bw, "\n%s\n", p.path.Sprint(fr.Path))
		for _, row := range rows {
			sevColor := p.warnSev
			if row.severity == model.Error {
				sevColor = p.errorSev
			}
			line := fmt.Sprintf("  %s  %s  %s  %s",
				p.pos.Sprint(padLeft(row.pos, posW)),
				sevColor.Sprint(padRight(row.sev, sevW)),
				padRight(row.msg, msgW),
				p.rule.Sprint(row.rule))
			_, _ = fmt.Fprintln(bw, strings.TrimRight(line, " "))
		}
	}

	errs, warns, fixErrs, fixWarns := r.Totals()
	if total := errs + warns; total > 0 {
		summary := p.summaryWarn
		if errs > 0 {
			summary = p.summaryError
		}
		_, _ = fmt.Fprintf(bw, "\n%s\n", summary.Sprintf("✖ %s (%s, %s)",
			plural(total, "problem"), plural(errs, "error"), plural(warns, "warning")))
		if fixErrs+fixWarns > 0 {
			_, _ = fmt.Fprintf(bw, "%s\n", summary.Sprintf("  %s and %s potentially fixable with the `--fix` option.",
				plural(fixErrs, "error"), plural(fixWarns, "warning")))
		}
		_, _ = fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func severityLabel(s model.Severity) string {
	if s == model.Error {
		return "error"
	}
	return "warning"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads by display width so messages quoting wide characters
// stay aligned.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
