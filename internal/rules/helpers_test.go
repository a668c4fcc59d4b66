package rules

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phobologic/meteor3lint/internal/lang"
	"github.com/phobologic/meteor3lint/internal/lint"
	"github.com/phobologic/meteor3lint/internal/model"
)

func newLinter(rule *lint.Rule, opts any) *lint.Linter {
	return lint.New([]lint.Configured{{Rule: rule, Severity: model.Error, Options: opts}})
}

func parserFor(t *testing.T, filename string) *lang.Language {
	t.Helper()
	name := lang.ForExtension(filepath.Ext(filename))
	require.NotEmpty(t, name, "no language for %s", filename)
	return lang.Languages[name]
}

// check lints src as filename with a single rule at error severity.
func check(t *testing.T, rule *lint.Rule, filename, src string, opts any) []model.Diagnostic {
	t.Helper()
	l := parserFor(t, filename)
	diags, err := newLinter(rule, opts).Verify(context.Background(), l.NewParser(), []byte(src), filename)
	require.NoError(t, err)
	for _, d := range diags {
		require.False(t, d.Fatal, "unexpected parse failure: %s", d.Message)
	}
	return diags
}

// fixed runs the rule with fixing and returns the output.
func fixed(t *testing.T, rule *lint.Rule, filename, src string, opts any) string {
	t.Helper()
	l := parserFor(t, filename)
	res, err := newLinter(rule, opts).VerifyAndFix(context.Background(), l.NewParser(), []byte(src), filename)
	require.NoError(t, err)
	return string(res.Output)
}

func messageIDs(diags []model.Diagnostic) []string {
	ids := make([]string, 0, len(diags))
	for _, d := range diags {
		ids = append(ids, d.MessageID)
	}
	return ids
}
