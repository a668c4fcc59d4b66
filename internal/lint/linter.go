package lint

import (
	"context"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/phobologic/meteor3lint/internal/fix"
	"github.com/phobologic/meteor3lint/internal/model"
)

// MaxFixPasses bounds VerifyAndFix, matching ESLint's limit.
const MaxFixPasses = 10

// Linter runs a fixed set of configured rules.
type Linter struct {
	rules []Configured
}

// New returns a Linter for the given rules. Rules at severity Off are dropped.
func New(rules []Configured) *Linter {
	var enabled []Configured
	for _, r := range rules {
		if r.Severity != model.Off && r.Rule != nil {
			enabled = append(enabled, r)
		}
	}
	return &Linter{rules: enabled}
}

// Rules returns the enabled rules in run order.
func (l *Linter) Rules() []Configured {
	return l.rules
}

// Verify parses source and returns the diagnostics of all enabled rules.
// filename identifies the file to rules that classify by path; it is
// converted to forward slashes. A file that does not parse yields a single
// fatal diagnostic and no rule runs. A panicking rule aborts this file only.
func (l *Linter) Verify(ctx context.Context, parser *sitter.Parser, source []byte, filename string) ([]model.Diagnostic, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return []model.Diagnostic{parseErrorDiagnostic(root)}, nil
	}
	return l.run(root, source, filepath.ToSlash(filename))
}

func (l *Linter) run(root *sitter.Node, source []byte, filename string) (diags []model.Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("rule panicked; skipping file",
				zap.String("file", filename),
				zap.Any("panic", r))
			diags = nil
			err = fmt.Errorf("linting %s: rule panicked: %v", filename, r)
		}
	}()

	dispatch := make(map[string][]func(*sitter.Node))
	for _, cfg := range l.rules {
		ctx := &Context{
			Filename: filename,
			Source:   source,
			Root:     root,
			Options:  cfg.Options,
			rule:     cfg.Rule,
			severity: cfg.Severity,
			sink:     &diags,
		}
		for kind, fn := range cfg.Rule.Create(ctx) {
			dispatch[kind] = append(dispatch[kind], fn)
		}
	}
	if len(dispatch) == 0 {
		return nil, nil
	}

	walk(root, dispatch)
	return diags, nil
}

// walk visits n and its descendants in document order.
func walk(n *sitter.Node, dispatch map[string][]func(*sitter.Node)) {
	for _, fn := range dispatch[n.Type()] {
		fn(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), dispatch)
	}
}

func parseErrorDiagnostic(root *sitter.Node) model.Diagnostic {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPoint()
	msg := "Parsing error: unexpected token"
	if bad.IsMissing() {
		msg = fmt.Sprintf("Parsing error: missing %q", bad.Type())
	}
	return model.Diagnostic{
		Message:   msg,
		Severity:  model.Error,
		Line:      int(pos.Row) + 1,
		Column:    int(pos.Column) + 1,
		StartByte: bad.StartByte(),
		EndByte:   bad.EndByte(),
		Fatal:     true,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// FixResult is the outcome of VerifyAndFix.
type FixResult struct {
	// Output is the source after all applied passes.
	Output []byte
	// Fixed reports whether Output differs from the input.
	Fixed bool
	// Diagnostics are the remaining problems in Output.
	Diagnostics []model.Diagnostic
	Passes      int
}

// VerifyAndFix repeatedly lints and applies fixes until no fix applies or
// MaxFixPasses is reached. A pass whose output no longer parses is
// discarded.
func (l *Linter) VerifyAndFix(ctx context.Context, parser *sitter.Parser, source []byte, filename string) (FixResult, error) {
	current := source
	res := FixResult{Output: source}
	verified := false

	for pass := 0; pass < MaxFixPasses; pass++ {
		diags, err := l.Verify(ctx, parser, current, filename)
		if err != nil {
			return res, err
		}
		res.Diagnostics = diags
		verified = true

		fixes := collectFixes(diags)
		if len(fixes) == 0 {
			break
		}
		applied := fix.Apply(current, fixes)
		if applied.Applied == 0 {
			break
		}
		if !l.parses(ctx, parser, applied.Output) {
			Logger().Warn("discarding fixes that break the syntax",
				zap.String("file", filename),
				zap.Int("pass", pass+1))
			break
		}
		current = applied.Output
		verified = false
		res.Passes++
		Logger().Debug("applied fixes",
			zap.String("file", filename),
			zap.Int("pass", res.Passes),
			zap.Int("applied", applied.Applied),
			zap.Int("deferred", applied.Skipped))
	}

	if !verified {
		diags, err := l.Verify(ctx, parser, current, filename)
		if err != nil {
			return res, err
		}
		res.Diagnostics = diags
	}
	res.Output = current
	res.Fixed = res.Passes > 0
	return res, nil
}

func (l *Linter) parses(ctx context.Context, parser *sitter.Parser, source []byte) bool {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return false
	}
	defer tree.Close()
	return !tree.RootNode().HasError()
}

func collectFixes(diags []model.Diagnostic) []model.Fix {
	var fixes []model.Fix
	for i := range diags {
		if diags[i].Fix != nil {
			fixes = append(fixes, *diags[i].Fix)
		}
	}
	return fixes
}
