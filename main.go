// meteor3lint reports, and optionally fixes, code that needs changing for
// Meteor 3 in JavaScript and TypeScript sources.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/phobologic/meteor3lint/internal/config"
	"github.com/phobologic/meteor3lint/internal/discover"
	"github.com/phobologic/meteor3lint/internal/fix"
	"github.com/phobologic/meteor3lint/internal/lang"
	"github.com/phobologic/meteor3lint/internal/lint"
	"github.com/phobologic/meteor3lint/internal/model"
	"github.com/phobologic/meteor3lint/internal/ranking"
	"github.com/phobologic/meteor3lint/internal/report"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

// errProblems means the run found lint errors or too many warnings. It maps
// to exit status 1 without an error message.
var errProblems = errors.New("problems found")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errProblems):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

type options struct {
	fix         bool
	fixDryRun   bool
	format      string
	configPath  string
	preset      string
	maxWarnings int
	maxFiles    int
	langs       string
	maxFileSize int
	cachePath   string
	onlyFile    string
	onlyRule    string
	quiet       bool
	noColor     bool
	verbose     bool
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "meteor3lint [flags] [path...]",
		Short: "Find and fix code that needs changing for Meteor 3",
		Long: `meteor3lint parses JavaScript and TypeScript sources and reports synchronous
Meteor APIs, deprecated calls and error handling that need updating for
Meteor 3. Many problems can be fixed in place with --fix.

Paths may be files or directories and default to the current directory.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return lintPaths(cmd.Context(), args, &opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("meteor3lint {{.Version}}\n")

	f := cmd.Flags()
	f.BoolVar(&opts.fix, "fix", false, "fix problems in place")
	f.BoolVar(&opts.fixDryRun, "fix-dry-run", false, "show the fixes as a unified diff without writing files")
	f.StringVarP(&opts.format, "format", "f", report.Stylish, "output format: "+strings.Join(report.Formats(), ", "))
	f.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default: nearest .meteor3lint.yaml)")
	f.StringVar(&opts.preset, "preset", "", "preset to start from: "+strings.Join(config.PresetNames(), ", "))
	f.IntVar(&opts.maxWarnings, "max-warnings", -1, "exit with status 1 when there are more warnings than this (-1 disables)")
	f.IntVarP(&opts.maxFiles, "max-files", "n", 0, "report only the N files with the most problems")
	f.StringVarP(&opts.langs, "langs", "l", "", "comma-separated languages to lint: "+strings.Join(lang.Names(), ", "))
	f.IntVar(&opts.maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	f.StringVar(&opts.cachePath, "cache", "", "cache results in this file and reuse them while no file changed")
	f.StringVar(&opts.onlyFile, "only-file", "", "report only files whose path contains this text")
	f.StringVar(&opts.onlyRule, "only-rule", "", "report only rules whose name contains this text")
	f.BoolVar(&opts.quiet, "quiet", false, "report errors only")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	cmd.MarkFlagsMutuallyExclusive("fix", "fix-dry-run")

	cmd.AddCommand(newInitCmd(stdout, stderr), newRulesCmd(stdout))
	return cmd
}

func newLogger(stderr io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(stderr), level)
	return zap.New(core)
}

func lintPaths(ctx context.Context, paths []string, opts *options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)
	defer func() { _ = logger.Sync() }()
	discover.SetLogger(logger)
	lint.SetLogger(logger)

	if !slices.Contains(report.Formats(), opts.format) {
		return fmt.Errorf("unknown format %q (want %s)", opts.format, strings.Join(report.Formats(), ", "))
	}

	langFilter, err := parseLangs(opts.langs)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	configured, err := loadRules(cwd, opts, logger)
	if err != nil {
		return err
	}
	linter := lint.New(configured)

	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := collectFiles(cwd, paths, langFilter)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no lintable files found")
	}

	files = filterBySize(cwd, files, opts.maxFileSize, logger)
	if len(files) == 0 {
		return fmt.Errorf("no lintable files found (all exceeded size limit)")
	}

	fixing := opts.fix || opts.fixDryRun
	useCache := opts.cachePath != "" && !fixing
	key := cacheKey(configured)

	var results []model.FileResult
	if useCache {
		if cached, ok := loadCache(opts.cachePath, key, cwd, files); ok {
			logger.Debug("using cached results", zap.String("cache", opts.cachePath))
			results = cached
		}
	}
	if results == nil {
		var skipped []string
		results, skipped, err = lintFiles(ctx, cwd, files, linter, fixing, logger)
		if err != nil {
			return err
		}
		if useCache {
			if err := writeCache(opts.cachePath, key, results, skipped); err != nil {
				logger.Warn("could not write cache", zap.String("cache", opts.cachePath), zap.Error(err))
			}
		}
	}

	switch {
	case opts.fix:
		if err := writeFixes(cwd, results, logger); err != nil {
			return err
		}
	case opts.fixDryRun && opts.format != report.JSON:
		if err := printDiffs(stdout, cwd, results); err != nil {
			return err
		}
	}

	rep := &model.Report{Root: filepath.Base(cwd), Files: results}
	if opts.quiet {
		rep = errorsOnly(rep)
	}
	if opts.onlyFile != "" {
		rep = ranking.FilterByFile(rep, opts.onlyFile)
	}
	if opts.onlyRule != "" {
		rep = ranking.FilterByRule(rep, opts.onlyRule)
	}
	// Ranks are shares of what is reported, so they follow the filters.
	ranking.Rank(rep.Files)
	if opts.maxFiles > 0 {
		rep = ranking.SelectFiles(rep, opts.maxFiles)
	}

	color := !opts.noColor && isTerminal(stdout)
	if err := report.Write(stdout, opts.format, rep, report.Options{Color: color}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	errs, warns, _, _ := rep.Totals()
	if errs > 0 {
		return errProblems
	}
	if opts.maxWarnings >= 0 && warns > opts.maxWarnings {
		_, _ = fmt.Fprintf(stderr, "meteor3lint found too many warnings (maximum: %d).\n", opts.maxWarnings)
		return errProblems
	}
	return nil
}

func parseLangs(langs string) ([]string, error) {
	if langs == "" {
		return nil, nil
	}
	var out []string
	for _, name := range strings.Split(langs, ",") {
		name = strings.TrimSpace(name)
		if _, ok := lang.Languages[name]; !ok {
			return nil, fmt.Errorf("unsupported language %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// loadRules resolves the configuration: an explicit --config file, else
// the nearest configuration file above cwd, else the preset alone.
func loadRules(cwd string, opts *options, logger *zap.Logger) ([]lint.Configured, error) {
	path := opts.configPath
	if path == "" {
		path = config.Find(cwd)
	}

	var file *config.File
	if path != "" {
		f, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded config", zap.String("path", path))
		file = f
	}

	configured, err := config.Resolve(file, opts.preset)
	if err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return configured, nil
}

// collectFiles expands path arguments into file entries relative to cwd.
// Directories are walked; files are taken as given when their language is
// supported.
func collectFiles(cwd string, paths []string, langFilter []string) ([]discover.FileEntry, error) {
	seen := make(map[string]struct{})
	var files []discover.FileEntry
	add := func(e discover.FileEntry) {
		if _, dup := seen[e.Path]; dup {
			return
		}
		seen[e.Path] = struct{}{}
		files = append(files, e)
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}

		if !info.IsDir() {
			if e, ok := discover.Classify(cwd, abs, langFilter); ok {
				add(e)
			}
			continue
		}

		found, err := discover.Files(abs, langFilter)
		if err != nil {
			return nil, fmt.Errorf("discovering files: %w", err)
		}
		for _, e := range found {
			e.Path = relativeTo(cwd, filepath.Join(abs, e.Path))
			add(e)
		}
	}
	return files, nil
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

func resolvePath(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

func filterBySize(cwd string, files []discover.FileEntry, maxSize int, logger *zap.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(resolvePath(cwd, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			logger.Warn("skipping large file", zap.String("file", f.Path), zap.Int("limit", maxSize))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// lintFiles lints files concurrently with one parser per file and returns
// the results in input order. Unreadable files are logged, left out and
// returned as skipped.
func lintFiles(ctx context.Context, cwd string, files []discover.FileEntry, linter *lint.Linter, fixing bool, logger *zap.Logger) ([]model.FileResult, []string, error) {
	results := make([]model.FileResult, len(files))
	valid := make([]bool, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			absPath := resolvePath(cwd, f.Path)
			source, err := os.ReadFile(absPath)
			if err != nil {
				logger.Warn("could not read file", zap.String("file", f.Path), zap.Error(err))
				return nil
			}

			parser := lang.Languages[f.Language].NewParser()
			defer parser.Close()

			fr := model.FileResult{Path: f.Path, Language: f.Language}
			if fixing {
				res, err := linter.VerifyAndFix(ctx, parser, source, absPath)
				if err != nil {
					fr.Diagnostics = []model.Diagnostic{internalError(err)}
				} else {
					fr.Diagnostics = res.Diagnostics
					if res.Fixed {
						fr.Output = res.Output
					}
				}
			} else {
				diags, err := linter.Verify(ctx, parser, source, absPath)
				if err != nil {
					diags = []model.Diagnostic{internalError(err)}
				}
				fr.Diagnostics = diags
			}

			results[i] = fr
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		out     []model.FileResult
		skipped []string
	)
	for i, ok := range valid {
		if ok {
			out = append(out, results[i])
		} else {
			skipped = append(skipped, files[i].Path)
		}
	}
	return out, skipped, nil
}

// internalError reports a file the linter could not process.
func internalError(err error) model.Diagnostic {
	return model.Diagnostic{
		Message:  err.Error(),
		Severity: model.Error,
		Line:     1,
		Column:   1,
		Fatal:    true,
	}
}

func writeFixes(cwd string, results []model.FileResult, logger *zap.Logger) error {
	for i := range results {
		fr := &results[i]
		if fr.Output == nil {
			continue
		}
		path := resolvePath(cwd, fr.Path)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("writing fixes: %w", err)
		}
		if err := os.WriteFile(path, fr.Output, info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing fixes: %w", err)
		}
		logger.Debug("wrote fixes", zap.String("file", fr.Path))
	}
	return nil
}

func printDiffs(w io.Writer, cwd string, results []model.FileResult) error {
	for i := range results {
		fr := &results[i]
		if fr.Output == nil {
			continue
		}
		before, err := os.ReadFile(resolvePath(cwd, fr.Path))
		if err != nil {
			return fmt.Errorf("reading %s: %w", fr.Path, err)
		}
		d, err := fix.Diff(filepath.ToSlash(fr.Path), before, fr.Output)
		if err != nil {
			return fmt.Errorf("diffing %s: %w", fr.Path, err)
		}
		if _, err := w.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// errorsOnly drops warnings, as --quiet asks.
func errorsOnly(r *model.Report) *model.Report {
	out := &model.Report{Root: r.Root, Files: make([]model.FileResult, 0, len(r.Files))}
	for _, fr := range r.Files {
		var diags []model.Diagnostic
		for _, d := range fr.Diagnostics {
			if d.Severity == model.Error {
				diags = append(diags, d)
			}
		}
		fr.Diagnostics = diags
		out.Files = append(out.Files, fr)
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
