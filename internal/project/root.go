package project

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the per-project export configuration file. The directory
// that contains it is the project root.
const ConfigFileName = ".export.toml"

// FindRoot walks from path up through its ancestors and returns the first
// directory containing ConfigFileName. The search starts at path itself when
// it is a directory, otherwise at its parent. The returned root is absolute.
func FindRoot(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
