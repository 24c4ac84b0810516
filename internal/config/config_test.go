// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "pagepilot", cfg.Logger.ServiceName)
	assert.Equal(t, "UserSettings.json", cfg.Settings.File)
	assert.Equal(t, 30*time.Second, cfg.Browser.LaunchTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("logger.level", "debug")
	v.Set("settings.file", "/etc/pagepilot/settings.json")
	v.Set("browser.launch_timeout", "45s")
	v.Set("browser.args", []string{"disable-gpu"})

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/etc/pagepilot/settings.json", cfg.Settings.File)
	assert.Equal(t, 45*time.Second, cfg.Browser.LaunchTimeout)
	assert.Equal(t, []string{"disable-gpu"}, cfg.Browser.Args)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Settings.File = ""
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Browser.LaunchTimeout = 0
	assert.Error(t, cfg.Validate())
}
