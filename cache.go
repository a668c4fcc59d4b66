package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/phobologic/meteor3lint/internal/discover"
	"github.com/phobologic/meteor3lint/internal/lint"
	"github.com/phobologic/meteor3lint/internal/model"
)

// cacheFile is the on-disk form of a cached run.
type cacheFile struct {
	Key   string             `json:"key"`
	Files []model.FileResult `json:"files"`
	// Skipped lists files that could not be read when the cache was written.
	Skipped []string `json:"skipped,omitempty"`
}

// cacheKey identifies the rule configuration a cache was written with.
// Changing the binary version, a severity or an option invalidates it.
func cacheKey(configured []lint.Configured) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\n", version)
	for _, c := range configured {
		opts, _ := json.Marshal(c.Options)
		_, _ = fmt.Fprintf(h, "%s=%d %s\n", c.Rule.Name, c.Severity, opts)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// loadCache returns the cached results when the cache was written with key
// for exactly files, counting the ones skipped then, and no file changed
// since.
func loadCache(cachePath, key, root string, files []discover.FileEntry) ([]model.FileResult, bool) {
	if !cacheIsFresh(cachePath, root, files) {
		return nil, false
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil || cf.Key != key {
		return nil, false
	}
	if len(cf.Files)+len(cf.Skipped) != len(files) {
		return nil, false
	}
	covered := make(map[string]struct{}, len(files))
	for _, fr := range cf.Files {
		covered[fr.Path] = struct{}{}
	}
	for _, p := range cf.Skipped {
		covered[p] = struct{}{}
	}
	for _, f := range files {
		if _, ok := covered[f.Path]; !ok {
			return nil, false
		}
	}
	if cf.Files == nil {
		cf.Files = []model.FileResult{}
	}
	return cf.Files, true
}

func writeCache(cachePath, key string, results []model.FileResult, skipped []string) error {
	data, err := json.Marshal(cacheFile{Key: key, Files: results, Skipped: skipped})
	if err != nil {
		return err
	}
	return os.WriteFile(cachePath, data, 0o644)
}

// cacheIsFresh reports whether every file is older than the cache.
func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(resolvePath(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}
