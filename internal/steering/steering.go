// Package steering resolves the workspace's steering documents: markdown
// files a prompt recommends as context. Only paths are collected here; file
// contents are never read.
package steering

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is the fixed workspace subdirectory holding steering documents.
const Dir = ".kiro/steering"

// ReferenceFiles returns the sorted list of .md file paths under the
// workspace's steering directory. A missing directory yields an empty list,
// not an error.
func ReferenceFiles(workspacePath string) ([]string, error) {
	dir := filepath.Join(workspacePath, filepath.FromSlash(Dir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read steering directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
