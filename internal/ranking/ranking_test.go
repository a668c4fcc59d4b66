package ranking

import (
	"math"
	"testing"

	"github.com/phobologic/meteor3lint/internal/model"
)

func diag(rule string, sev model.Severity) model.Diagnostic {
	return model.Diagnostic{Rule: rule, Severity: sev}
}

func makeReport() *model.Report {
	return &model.Report{
		Root: "app",
		Files: []model.FileResult{
			{Path: "client/main.js", Diagnostics: []model.Diagnostic{
				diag("meteor3/no-deprecated-methods", model.Warn),
			}},
			{Path: "server/methods.js", Diagnostics: []model.Diagnostic{
				diag("meteor3/async-meteor-methods", model.Error),
				diag("meteor3/no-sync-methods-server", model.Error),
				diag("meteor3/use-meteor-error", model.Warn),
			}},
			{Path: "server/clean.js"},
			{Path: "imports/api/links.js", Diagnostics: []model.Diagnostic{
				diag("meteor3/no-sync-methods-server", model.Error),
			}},
		},
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	Rank(rep.Files)

	// Weighted problems: 1, 5, 0, 2 out of 8.
	want := []float64{1.0 / 8, 5.0 / 8, 0, 2.0 / 8}
	var sum float64
	for i, w := range want {
		if math.Abs(rep.Files[i].Rank-w) > 1e-9 {
			t.Errorf("%s rank = %f, want %f", rep.Files[i].Path, rep.Files[i].Rank, w)
		}
		sum += rep.Files[i].Rank
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("ranks sum to %f, want 1", sum)
	}
}

func TestRankClean(t *testing.T) {
	t.Parallel()

	files := []model.FileResult{{Path: "a.js"}, {Path: "b.js"}}
	Rank(files)
	for _, f := range files {
		if f.Rank != 0 {
			t.Errorf("%s rank = %f, want 0", f.Path, f.Rank)
		}
	}
}

func TestSelectFilesAll(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	if got := SelectFiles(rep, 0); got != rep {
		t.Error("maxFiles=0 should return original")
	}
	if got := SelectFiles(rep, 10); got != rep {
		t.Error("maxFiles > len should return original")
	}
	if got := SelectFiles(rep, 4); got != rep {
		t.Error("maxFiles == len should return original")
	}
}

func TestSelectFilesSubset(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	Rank(rep.Files)
	got := SelectFiles(rep, 2)

	if len(got.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(got.Files))
	}
	if got.Files[0].Path != "server/methods.js" || got.Files[1].Path != "imports/api/links.js" {
		t.Errorf("expected server/methods.js, imports/api/links.js; got %s, %s", got.Files[0].Path, got.Files[1].Path)
	}
	if rep.Files[0].Path != "client/main.js" {
		t.Error("SelectFiles must not reorder the input report")
	}
}

func TestFilterByFile(t *testing.T) {
	t.Parallel()

	got := FilterByFile(makeReport(), "SERVER/")
	if len(got.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(got.Files))
	}
	for _, f := range got.Files {
		if f.Path != "server/methods.js" && f.Path != "server/clean.js" {
			t.Errorf("unexpected file %s", f.Path)
		}
	}
}

func TestFilterByRule(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	rep.Files[2].Diagnostics = []model.Diagnostic{{Severity: model.Error, Fatal: true}}

	got := FilterByRule(rep, "no-sync")
	if len(got.Files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(got.Files))
	}
	if got.Files[0].Path != "server/methods.js" || len(got.Files[0].Diagnostics) != 1 {
		t.Errorf("server/methods.js diagnostics = %+v", got.Files[0].Diagnostics)
	}
	if got.Files[1].Path != "server/clean.js" || !got.Files[1].Diagnostics[0].Fatal {
		t.Errorf("parse failures should survive rule filtering: %+v", got.Files[1])
	}
	if len(rep.Files[1].Diagnostics) != 3 {
		t.Error("FilterByRule must not modify the input report")
	}
}
