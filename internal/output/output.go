package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a validated output folder
type Dir struct {
	path string
}

// New expands and validates path
func New(path string) (*Dir, error) {
	if path == "" {
		path = "."
	}

	// Expand ~ to home directory
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("output folder does not exist: %s", path)
		}
		return nil, fmt.Errorf("checking output folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output path is not a folder: %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving output folder: %w", err)
	}
	return &Dir{path: abs}, nil
}

// String returns the absolute folder path
func (d *Dir) String() string {
	return d.path
}

// Path returns the path of name inside the folder
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, filepath.Base(name))
}

// Write stores data as name, replacing any existing file, and returns its path
func (d *Dir) Write(name string, data []byte) (string, error) {
	path := d.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
