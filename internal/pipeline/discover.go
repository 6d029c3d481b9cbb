package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/docrank/internal/parser"
)

// DiscoverDocuments lists the supported documents directly inside dir,
// sorted by file name. Names in exclude (base names, e.g. persona.txt) are
// skipped, as are hidden files and subdirectories.
func DiscoverDocuments(dir string, exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[filepath.Base(name)] = true
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || skip[name] {
			continue
		}
		if !parser.IsSupported(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadText reads a persona or job file and trims surrounding whitespace
func LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return strings.TrimSpace(string(data)), nil
}
