package fix

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// Diff renders the change from before to after as a unified diff without
// context lines. It returns nil when the contents are equal.
func Diff(name string, before, after []byte) ([]byte, error) {
	if bytes.Equal(before, after) {
		return nil, nil
	}
	a, b := splitLines(before), splitLines(after)

	var hunks []*diff.Hunk
	for _, group := range difflib.NewMatcher(a, b).GetGroupedOpCodes(0) {
		h, err := buildHunk(group, a, b)
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", name, err)
		}
		if h != nil {
			hunks = append(hunks, h)
		}
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    hunks,
	}
	return diff.PrintFileDiff(fd)
}

func splitLines(src []byte) []string {
	if len(src) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(src), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// buildHunk turns one group of opcodes into a hunk. Groups holding only
// equal ranges yield nil.
func buildHunk(group []difflib.OpCode, a, b []string) (*diff.Hunk, error) {
	var (
		body                bytes.Buffer
		origLines, newLines int
		changed             bool
	)
	origStart, newStart := group[0].I1, group[0].J1
	writeLines := func(prefix byte, lines []string) {
		for _, l := range lines {
			body.WriteByte(prefix)
			body.WriteString(l)
			if !strings.HasSuffix(l, "\n") {
				body.WriteByte('\n')
			}
		}
	}

	for _, op := range group {
		switch op.Tag {
		case 'e':
			continue
		case 'd', 'r':
			writeLines('-', a[op.I1:op.I2])
		}
		if op.Tag == 'i' || op.Tag == 'r' {
			writeLines('+', b[op.J1:op.J2])
		}
		origLines += op.I2 - op.I1
		newLines += op.J2 - op.J1
		changed = true
	}
	if !changed {
		return nil, nil
	}

	h := &diff.Hunk{Body: body.Bytes()}
	var err error
	if h.OrigLines, err = safecast.Conv[int32](origLines); err != nil {
		return nil, err
	}
	if h.NewLines, err = safecast.Conv[int32](newLines); err != nil {
		return nil, err
	}
	// Unified diff numbers an empty side by the line before it.
	if origLines > 0 {
		origStart++
	}
	if newLines > 0 {
		newStart++
	}
	if h.OrigStartLine, err = safecast.Conv[int32](origStart); err != nil {
		return nil, err
	}
	if h.NewStartLine, err = safecast.Conv[int32](newStart); err != nil {
		return nil, err
	}
	return h, nil
}
