// Package workspace locates the project root and owns the .tasklens state
// directory layout.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StateDir is the per-workspace directory holding config, logs and history.
const StateDir = ".tasklens"

// Detect finds the workspace root: the enclosing Git repository root if one
// exists, the current directory otherwise.
func Detect() (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root := findGitRoot(pwd); root != "" {
		return root, nil
	}
	return pwd, nil
}

// findGitRoot walks up the directory tree looking for a .git directory.
func findGitRoot(startPath string) string {
	currentPath := startPath
	for {
		if _, err := os.Stat(filepath.Join(currentPath, ".git")); err == nil {
			return currentPath
		}
		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}
	return ""
}

// EnsureStateDir creates the .tasklens directory tree if it doesn't exist
// and returns its path.
func EnsureStateDir(workspacePath string) (string, error) {
	dir := filepath.Join(workspacePath, StateDir)
	if err := os.MkdirAll(filepath.Join(dir, "history"), 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// FindTaskFiles returns the markdown task files under the workspace, sorted:
// any file whose name ends in tasks.md, skipping dot-directories.
func FindTaskFiles(workspacePath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(workspacePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			// .kiro holds spec folders whose task files we want; every
			// other dot-directory is skipped.
			if strings.HasPrefix(name, ".") && name != ".kiro" && path != workspacePath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), "tasks.md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
