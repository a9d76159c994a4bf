package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the optional per-vault configuration file.
const ConfigFile = "tagnote.yaml"

// ErrRootNotFound is returned when no vault root exists above a directory.
var ErrRootNotFound = errors.New("root not found")

// FindRoot walks upwards from startDir looking for a vault root indicator:
// a .tagnote directory or a tagnote.yaml file.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".tagnote") || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
