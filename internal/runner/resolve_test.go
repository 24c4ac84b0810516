// File: internal/runner/resolve_test.go
package runner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/pagepilot/internal/settings"
)

func TestResolveTargetURL_AbsoluteOverrideWins(t *testing.T) {
	doc := &settings.Document{TargetURL: "https://global.test/home"}
	task := settings.Task{TargetURLOverride: "https://override.test/page"}

	got, err := ResolveTargetURL(doc, task)
	require.NoError(t, err)
	assert.Equal(t, "https://override.test/page", got)
}

func TestResolveTargetURL_GlobalWhenNoOverride(t *testing.T) {
	doc := &settings.Document{TargetURL: "https://global.test/home"}

	got, err := ResolveTargetURL(doc, settings.Task{})
	require.NoError(t, err)
	assert.Equal(t, "https://global.test/home", got)
}

func TestResolveTargetURL_RelativeAgainstGlobalAuthority(t *testing.T) {
	doc := &settings.Document{TargetURL: "https://global.test/deep/path"}
	task := settings.Task{TargetURLOverride: "/groups/42"}

	got, err := ResolveTargetURL(doc, task)
	require.NoError(t, err)
	// The authority carries over; the global path does not.
	assert.Equal(t, "https://global.test/groups/42", got)
}

func TestResolveTargetURL_RelativeFallsBackToLoginAuthority(t *testing.T) {
	doc := &settings.Document{
		TargetURL: "not a url",
		Login:     settings.Login{URL: "https://login.test/signin"},
	}
	task := settings.Task{TargetURLOverride: "dashboard"}

	got, err := ResolveTargetURL(doc, task)
	require.NoError(t, err)
	assert.Equal(t, "https://login.test/dashboard", got)
}

func TestResolveTargetURL_NoBaseIsConfigError(t *testing.T) {
	doc := &settings.Document{TargetURL: "just-a-path"}

	_, err := ResolveTargetURL(doc, settings.Task{})
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestArtifactPath_Deterministic(t *testing.T) {
	a := ArtifactPath("shots/out.png", "Work", "Morning Run")
	b := ArtifactPath("shots/out.png", "Work", "Morning Run")
	assert.Equal(t, a, b, "identical inputs map to the same file")

	assert.Equal(t, "out_Work_Morning_Run.png", filepath.Base(a))
	assert.True(t, filepath.IsAbs(a))
}

func TestArtifactPath_SanitizesNames(t *testing.T) {
	got := ArtifactPath("shots/out.png", "pro/file", "task:name")
	assert.Equal(t, "out_pro_file_task_name.png", filepath.Base(got))
}

func TestArtifactPath_DefaultsExtensionAndBase(t *testing.T) {
	got := ArtifactPath("shots/capture", "P", "T")
	assert.Equal(t, "capture_P_T.png", filepath.Base(got))

	got = ArtifactPath("", "P", "T")
	assert.Equal(t, "screenshot_P_T.png", filepath.Base(got))
	assert.Equal(t, "artifacts", filepath.Base(filepath.Dir(got)))
}
