package report

import (
	"encoding/json"
	"io"

	"github.com/phobologic/meteor3lint/internal/model"
)

// FixJSON is a fix as byte range and replacement text.
type FixJSON struct {
	Range [2]uint32 `json:"range"`
	Text  string    `json:"text"`
}

// MessageJSON is one diagnostic in the ESLint JSON layout.
type MessageJSON struct {
	RuleID    *string           `json:"ruleId"`
	Severity  int               `json:"severity"`
	Message   string            `json:"message"`
	MessageID string            `json:"messageId,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Line      int               `json:"line"`
	Column    int               `json:"column"`
	Fatal     bool              `json:"fatal,omitempty"`
	Fix       *FixJSON          `json:"fix,omitempty"`
}

// FileJSON is one file's results.
type FileJSON struct {
	FilePath            string        `json:"filePath"`
	Messages            []MessageJSON `json:"messages"`
	ErrorCount          int           `json:"errorCount"`
	WarningCount        int           `json:"warningCount"`
	FixableErrorCount   int           `json:"fixableErrorCount"`
	FixableWarningCount int           `json:"fixableWarningCount"`
	Output              *string       `json:"output,omitempty"`
}

// ToJSON converts r to the ESLint-compatible JSON result list.
func ToJSON(r *model.Report) []FileJSON {
	out := make([]FileJSON, 0, len(r.Files))
	for i := range r.Files {
		fr := &r.Files[i]
		fj := FileJSON{
			FilePath: fr.Path,
			Messages: make([]MessageJSON, 0, len(fr.Diagnostics)),
		}
		fj.ErrorCount, fj.WarningCount = fr.Counts()
		fj.FixableErrorCount, fj.FixableWarningCount = fr.Fixable()
		if fr.Output != nil {
			s := string(fr.Output)
			fj.Output = &s
		}
		for _, d := range fr.Diagnostics {
			m := MessageJSON{
				Severity:  int(d.Severity),
				Message:   d.Message,
				MessageID: d.MessageID,
				Data:      d.Data,
				Line:      d.Line,
				Column:    d.Column,
				Fatal:     d.Fatal,
			}
			if d.Rule != "" {
				rule := d.Rule
				m.RuleID = &rule
			}
			if d.Fix != nil {
				m.Fix = &FixJSON{Range: [2]uint32{d.Fix.Start, d.Fix.End}, Text: d.Fix.Text}
			}
			fj.Messages = append(fj.Messages, m)
		}
		out = append(out, fj)
	}
	return out
}

func writeJSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToJSON(r))
}
