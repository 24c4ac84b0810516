// File: internal/browser/datadir.go
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
)

// ResolveUserDataDir returns the absolute storage directory for a profile's
// persistent session, creating it if needed. With an empty root the platform
// default is used: %LocalAppData%\pagepilot on Windows, ~/.cache/pagepilot
// elsewhere.
func ResolveUserDataDir(root, profileDirName string) (string, error) {
	if root == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		if runtime.GOOS == "windows" {
			if localApp := os.Getenv("LOCALAPPDATA"); localApp != "" {
				root = filepath.Join(localApp, "pagepilot")
			} else {
				root = filepath.Join(home, "AppData", "Local", "pagepilot")
			}
		} else {
			root = filepath.Join(home, ".cache", "pagepilot")
		}
	}

	dir := filepath.Join(root, profileDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating user data dir %s: %w", dir, err)
	}
	return dir, nil
}
