// Package ranking orders lint results so the files needing the most work
// come first, and narrows reports down to a subset of files or rules.
package ranking

import (
	"sort"
	"strings"

	"github.com/phobologic/meteor3lint/internal/model"
)

// Problem weights used by Rank.
const (
	ErrorWeight   = 2.0
	WarningWeight = 1.0
)

// Rank sets each file's Rank to its share of the run's weighted problems.
// Ranks sum to 1 when there is at least one problem and are all 0 otherwise.
func Rank(files []model.FileResult) {
	scores := make([]float64, len(files))
	var total float64
	for i := range files {
		errs, warns := files[i].Counts()
		scores[i] = ErrorWeight*float64(errs) + WarningWeight*float64(warns)
		total += scores[i]
	}
	for i := range files {
		if total == 0 {
			files[i].Rank = 0
			continue
		}
		files[i].Rank = scores[i] / total
	}
}

// SelectFiles returns a new Report with only the maxFiles highest-ranked
// files, most problematic first. Ties keep path order. If maxFiles is <= 0
// or >= len(files), the report is returned unchanged.
func SelectFiles(r *model.Report, maxFiles int) *model.Report {
	if maxFiles <= 0 || maxFiles >= len(r.Files) {
		return r
	}

	ordered := make([]model.FileResult, len(r.Files))
	copy(ordered, r.Files)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Rank != ordered[j].Rank {
			return ordered[i].Rank > ordered[j].Rank
		}
		return ordered[i].Path < ordered[j].Path
	})

	return &model.Report{
		Root:  r.Root,
		Files: ordered[:maxFiles],
	}
}

// FilterByFile returns a new Report containing only files whose path
// contains substr (case-insensitive).
func FilterByFile(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	var files []model.FileResult
	for i := range r.Files {
		if strings.Contains(strings.ToLower(r.Files[i].Path), lower) {
			files = append(files, r.Files[i])
		}
	}
	return &model.Report{Root: r.Root, Files: files}
}

// FilterByRule returns a new Report keeping only diagnostics whose rule name
// contains substr (case-insensitive). Files left without diagnostics are
// dropped. Parse failures are always kept since no rule ran for them.
func FilterByRule(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	var files []model.FileResult
	for i := range r.Files {
		fr := r.Files[i]
		var diags []model.Diagnostic
		for _, d := range fr.Diagnostics {
			if d.Fatal || strings.Contains(strings.ToLower(d.Rule), lower) {
				diags = append(diags, d)
			}
		}
		if len(diags) == 0 {
			continue
		}
		fr.Diagnostics = diags
		files = append(files, fr)
	}
	return &model.Report{Root: r.Root, Files: files}
}
