// Package fix splices fix edits into source text.
package fix

import (
	"sort"

	"fortio.org/safecast"

	"github.com/phobologic/meteor3lint/internal/model"
)

// Result reports the outcome of one Apply call.
type Result struct {
	Output  []byte
	Applied int
	// Skipped counts fixes that overlapped an earlier fix. They are expected
	// to be regenerated on the next pass.
	Skipped int
}

// Apply splices fixes into source. Fixes are taken in order of their range;
// a fix is applied only when it starts after the end of the previously
// applied one, so two insertions at the same offset apply once.
func Apply(source []byte, fixes []model.Fix) Result {
	size, err := safecast.Conv[uint32](len(source))
	if len(fixes) == 0 || err != nil {
		return Result{Output: source, Skipped: len(fixes)}
	}

	sorted := make([]model.Fix, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var (
		out     []byte
		res     Result
		cursor  uint32
		lastEnd int64 = -1
	)
	for _, f := range sorted {
		if f.Start > f.End || f.End > size || int64(f.Start) <= lastEnd {
			res.Skipped++
			continue
		}
		out = append(out, source[cursor:f.Start]...)
		out = append(out, f.Text...)
		cursor = f.End
		lastEnd = int64(f.End)
		res.Applied++
	}
	out = append(out, source[cursor:]...)
	res.Output = out
	return res
}
