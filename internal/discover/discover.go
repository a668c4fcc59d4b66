// Package discover finds lintable source files in a Meteor application.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/meteor3lint/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to repo root
	Language string
}

// Directories that hold dependencies or build output. Dot directories,
// .meteor/local included, are always skipped.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"build":        {},
	"bundle":       {},
	"dist":         {},
	"coverage":     {},
}

// ignoreFiles are read at the root whether or not git lists the files.
// .gitignore is only consulted when git is unavailable.
var ignoreFiles = []string{".meteorignore", ".eslintignore"}

const gitTimeout = 10 * time.Second

// walker collects the files under one root.
type walker struct {
	root    string
	langs   map[string]struct{}
	tracked map[string]struct{} // nil when git is unavailable
	ignores []*ignore.GitIgnore
	found   []FileEntry
}

// Files discovers lintable source files under root.
// If languages is non-empty, only files matching one of the listed languages are returned.
func Files(root string, languages []string) ([]FileEntry, error) {
	w := &walker{root: root, langs: make(map[string]struct{}, len(languages))}
	for _, l := range languages {
		w.langs[l] = struct{}{}
	}

	w.tracked = gitTracked(root)
	names := ignoreFiles
	if w.tracked == nil {
		names = append([]string{".gitignore"}, ignoreFiles...)
	}
	for _, name := range names {
		if gi := compileIgnore(filepath.Join(root, name)); gi != nil {
			w.ignores = append(w.ignores, gi)
		}
	}

	if err := filepath.WalkDir(root, w.visit); err != nil {
		return nil, err
	}
	sort.Slice(w.found, func(i, j int) bool {
		return w.found[i].Path < w.found[j].Path
	})
	return w.found, nil
}

func (w *walker) visit(path string, d os.DirEntry, err error) error {
	if err != nil {
		Logger().Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
		return nil
	}
	if path == w.root {
		return nil
	}

	name := d.Name()
	hidden := strings.HasPrefix(name, ".")
	if d.IsDir() {
		if _, skip := skipDirs[name]; skip || hidden {
			return filepath.SkipDir
		}
		return nil
	}
	if hidden || d.Type()&os.ModeSymlink != 0 || isMinified(name) {
		return nil
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil || w.excluded(rel) {
		return nil
	}
	if langName, ok := w.accept(name); ok {
		w.found = append(w.found, FileEntry{Path: rel, Language: langName})
	}
	return nil
}

// excluded reports whether rel is untracked by git or matched by an ignore file.
func (w *walker) excluded(rel string) bool {
	if w.tracked != nil {
		if _, ok := w.tracked[filepath.ToSlash(rel)]; !ok {
			return true
		}
	}
	for _, gi := range w.ignores {
		if gi.MatchesPath(rel) {
			Logger().Debug("ignored by pattern", zap.String("path", rel))
			return true
		}
	}
	return false
}

func (w *walker) accept(name string) (string, bool) {
	return acceptLanguage(name, w.langs)
}

// acceptLanguage resolves the language of a file name and applies the
// language filter. An empty filter accepts every supported language.
func acceptLanguage(name string, langs map[string]struct{}) (string, bool) {
	langName := lang.ForExtension(filepath.Ext(name))
	if langName == "" {
		return "", false
	}
	if len(langs) > 0 {
		if _, ok := langs[langName]; !ok {
			return "", false
		}
	}
	return langName, true
}

// isMinified reports whether name looks like a vendored, minified bundle.
func isMinified(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(base, ".min")
}

// gitTracked returns the files git lists under root, tracked or untracked
// but not ignored. It returns nil when root is not a git work tree.
func gitTracked(root string) map[string]struct{} {
	if info, err := os.Stat(filepath.Join(root, ".git")); err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		Logger().Debug("git ls-files failed, walking without it", zap.String("root", root), zap.Error(err))
		return nil
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	files := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func compileIgnore(path string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	Logger().Debug("loaded ignore file", zap.String("path", path))
	return gi
}

// Classify returns the FileEntry for an explicitly named file, resolving its
// language from the extension. ok is false for unsupported files or files
// excluded by the language filter. Ignore files do not apply to named files.
func Classify(root, path string, languages []string) (FileEntry, bool) {
	langs := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		langs[l] = struct{}{}
	}
	langName, ok := acceptLanguage(filepath.Base(path), langs)
	if !ok {
		return FileEntry{}, false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return FileEntry{Path: rel, Language: langName}, true
}
