package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	conf := Default()
	conf.BackgroundAsset = "/assets/background.gif"
	conf.ForegroundAsset = "/assets/hello.jpg"
	conf.Framing = "length"
	conf.Channels = 4
	conf.SMTP.Username = "sender@example.com"

	require.NoError(t, Save(path, conf))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, conf, loaded)
	assert.Equal(t, stego.LengthPrefixed, loaded.FramingValue())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("background_asset: bg.gif\nsmtp:\n  username: me@example.com\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bg.gif", cfg.BackgroundAsset)
	assert.Equal(t, "me@example.com", cfg.SMTP.Username)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, stego.RGB, cfg.Channels)
	assert.Equal(t, "nul", cfg.Framing)
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad channels", "channels: 2\n"},
		{"bad framing", "framing: base64\n"},
		{"negative workers", "workers: -1\n"},
		{"bad window", "window:\n  width: 0\n"},
		{"bad yaml", "channels: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Default()))

	out := buf.String()
	assert.Contains(t, out, "framing: nul\n")
	assert.Contains(t, out, "  host: smtp.gmail.com\n")
	assert.Contains(t, out, "  panel_width: 620\n")
	assert.NotContains(t, out, "password:")
}
