// File: internal/runner/resolve.go
package runner

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/xkilldash9x/pagepilot/internal/settings"
)

const defaultArtifactPath = "artifacts/screenshot.png"

// ResolveTargetURL computes the effective navigation target for a task: the
// task override when present, otherwise the global target. A relative value
// is resolved against the authority of the global target, falling back to the
// login URL's authority; if neither yields one the task cannot run.
func ResolveTargetURL(doc *settings.Document, task settings.Task) (string, error) {
	raw := strings.TrimSpace(task.TargetURLOverride)
	if raw == "" {
		raw = strings.TrimSpace(doc.TargetURL)
	}

	if u, err := url.Parse(raw); err == nil && u.IsAbs() && u.Host != "" {
		return u.String(), nil
	}

	base := baseAuthority(doc.TargetURL)
	if base == nil {
		base = baseAuthority(doc.Login.URL)
	}
	if base == nil {
		return "", configErrorf("cannot interpret target URL %q: no absolute base URL configured", raw)
	}

	rel, err := url.Parse(strings.TrimLeft(raw, "/"))
	if err != nil {
		return "", configErrorf("cannot interpret target URL %q: %v", raw, err)
	}
	return base.ResolveReference(rel).String(), nil
}

// baseAuthority reduces an absolute URL to its scheme://host/ root, or nil
// when the input is not absolute.
func baseAuthority(raw string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}

// ArtifactPath derives the screenshot path for a (base path, profile, task)
// triple. The name is deterministic so repeated runs with identical inputs
// overwrite the same file instead of accumulating, and the profile and task
// names are sanitized to a filesystem-safe character set.
func ArtifactPath(basePath, profileName, taskName string) string {
	if strings.TrimSpace(basePath) == "" {
		basePath = defaultArtifactPath
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		abs = basePath
	}
	dir := filepath.Dir(abs)
	ext := filepath.Ext(abs)
	name := strings.TrimSuffix(filepath.Base(abs), ext)
	if ext == "" {
		ext = ".png"
	}

	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s%s",
		name, settings.Sanitize(profileName), settings.Sanitize(taskName), ext))
}
