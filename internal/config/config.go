// Package config loads the YAML configuration shared by the CLI, the HTTP
// shell and the presentation assets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

// DefaultFilename is looked up in the user's home directory when no
// --config flag is given.
const DefaultFilename = ".lsbmail.yaml"

// Window is the size presentation assets are scaled to. The background fills
// the whole window, the foreground fills the centred panel.
type Window struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	PanelWidth  int `yaml:"panel_width"`
	PanelHeight int `yaml:"panel_height"`
}

// SMTP configures the outbound mail transport. The password itself is never
// stored here, only where to fetch it from.
type SMTP struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	From         string `yaml:"from"`
	PasswordEnv  string `yaml:"password_env"`
	PasswordFile string `yaml:"password_file"`
	Subject      string `yaml:"subject"`
	Body         string `yaml:"body"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// Server configures the HTTP shell.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

type Config struct {
	BackgroundAsset string `yaml:"background_asset"`
	ForegroundAsset string `yaml:"foreground_asset"`
	Window          Window `yaml:"window"`
	OutputDir       string `yaml:"output_dir"`
	Channels        int    `yaml:"channels"`
	Framing         string `yaml:"framing"`
	Workers         int    `yaml:"workers"`
	SMTP            SMTP   `yaml:"smtp"`
	Server          Server `yaml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Window:    Window{Width: 900, Height: 650, PanelWidth: 620, PanelHeight: 560},
		OutputDir: "output",
		Channels:  stego.RGB,
		Framing:   stego.DefaultFraming.Name(),
		SMTP: SMTP{
			Host:        "smtp.gmail.com",
			Port:        465,
			PasswordEnv: "LSBMAIL_SMTP_PASSWORD",
			Subject:     "Stego Image",
			Body:        "Find the stego image attached with the hidden message.",
			TimeoutSec:  30,
		},
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:    32,
		},
	}
}

// DefaultPath is $HOME/.lsbmail.yaml, or the bare file name when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFilename
	}
	return filepath.Join(home, DefaultFilename)
}

// Load reads path over Default. A missing file is reported with an error
// wrapping os.ErrNotExist so callers can treat it as optional.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load that falls back to Default when path does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Encode writes cfg to w as YAML.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes cfg to path as YAML. The file may name where the SMTP password
// lives, so it is created readable by the owner only.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

func (c *Config) Validate() error {
	if c.Channels != stego.RGB && c.Channels != stego.RGBA {
		return fmt.Errorf("channels must be 3 or 4, got %d", c.Channels)
	}
	if _, err := stego.FramingByName(c.Framing); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.New("number of workers cannot be negative")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.PanelWidth <= 0 || c.Window.PanelHeight <= 0 {
		return fmt.Errorf("panel size must be positive, got %dx%d", c.Window.PanelWidth, c.Window.PanelHeight)
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp port out of range: %d", c.SMTP.Port)
	}
	if c.Server.MaxUploadMB < 0 {
		return errors.New("server max_upload_mb cannot be negative")
	}
	return nil
}

// FramingValue resolves the configured framing.
func (c *Config) FramingValue() stego.Framing {
	f, err := stego.FramingByName(c.Framing)
	if err != nil {
		return stego.DefaultFraming
	}
	return f
}
