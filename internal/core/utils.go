package core

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ with the home directory of the current user.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
