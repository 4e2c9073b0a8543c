package buildpipeline

import (
	"path/filepath"
	"sort"
	"strings"
)

// displayPath is the name a file is shown under: relative to baseDir when
// it lies below it, slash-separated.
func displayPath(file, baseDir string) string {
	if out := DisplayFiles([]string{file}, baseDir); len(out) == 1 {
		return out[0]
	}
	return file
}

// DisplayFiles returns the sorted, deduplicated names progress events use
// for files: relative to baseDir when below it, slash-separated.
func DisplayFiles(files []string, baseDir string) []string {
	if len(files) == 0 {
		return files
	}
	normalized := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))

	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}

	for _, file := range files {
		if file == "" {
			continue
		}
		path := filepath.Clean(file)
		if base != "" {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		path = filepath.ToSlash(path)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		normalized = append(normalized, path)
	}
	sort.Strings(normalized)
	return normalized
}
