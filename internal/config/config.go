package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yok-tottii/typo/internal/clipboard"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/i18n"
)

// AppName is the directory name used under the user config dir
const AppName = "Typo"

// Version is written into new config files
const Version = "1.3.0"

// Config holds application configuration
type Config struct {
	APIKey       string                    `json:"api_key"`
	Language     string                    `json:"language"` // "fr", "en", "es" or "de"
	Model        string                    `json:"model"`
	MaxTokens    int                       `json:"max_tokens"`
	Placeholder  string                    `json:"placeholder"`
	BusyCue      string                    `json:"busy_cue"` // "none", "beep" or "notify"
	Listener     string                    `json:"listener"` // "hook" or "register"
	LogLevel     string                    `json:"log_level"`
	SettingsPort int                       `json:"settings_port"`
	Timing       TimingConfig              `json:"timing"`
	Hotkeys      map[string]hotkey.Binding `json:"hotkeys"`
	Version      string                    `json:"version"`
}

// TimingConfig holds the capture/replace delays in milliseconds
type TimingConfig struct {
	SettleMS          int `json:"settle_ms"`
	ModifierReleaseMS int `json:"modifier_release_ms"`
	CopyMS            int `json:"copy_ms"`
	PasteFocusMS      int `json:"paste_focus_ms"`
	PasteTrailMS      int `json:"paste_trail_ms"`
	SelectMS          int `json:"select_ms"`
}

// Busy cue values
const (
	BusyCueNone   = "none"
	BusyCueBeep   = "beep"
	BusyCueNotify = "notify"
)

// Listener values
const (
	ListenerHook     = "hook"
	ListenerRegister = "register"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		APIKey:       "",
		Language:     string(i18n.LanguageFrench),
		Model:        "claude-haiku-4-5-20251001",
		MaxTokens:    2048,
		Placeholder:  "...",
		BusyCue:      BusyCueNone,
		Listener:     ListenerHook,
		LogLevel:     "INFO",
		SettingsPort: 18765,
		Timing:       TimingFromClipboard(clipboard.DefaultConfig()),
		Hotkeys:      hotkey.DefaultBindings(),
		Version:      Version,
	}
}

func ms(d time.Duration) int {
	return int(d / time.Millisecond)
}

// TimingFromClipboard converts clipboard delays to their config form
func TimingFromClipboard(c clipboard.Config) TimingConfig {
	return TimingConfig{
		SettleMS:          ms(c.Settle),
		ModifierReleaseMS: ms(c.ModifierRelease),
		CopyMS:            ms(c.Copy),
		PasteFocusMS:      ms(c.PasteFocus),
		PasteTrailMS:      ms(c.PasteTrail),
		SelectMS:          ms(c.Select),
	}
}

// Clipboard returns the delays as a clipboard configuration
func (t TimingConfig) Clipboard() clipboard.Config {
	d := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return clipboard.Config{
		Settle:          d(t.SettleMS),
		ModifierRelease: d(t.ModifierReleaseMS),
		Copy:            d(t.CopyMS),
		PasteFocus:      d(t.PasteFocusMS),
		PasteTrail:      d(t.PasteTrailMS),
		Select:          d(t.SelectMS),
	}
}

// Validate validates all configuration fields. Hotkeys are validated by the registry.
func (c *Config) Validate() error {
	if !i18n.ValidateLanguage(c.Language) {
		return fmt.Errorf("invalid language: %s (must be one of fr, en, es, de)", c.Language)
	}

	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxTokens <= 0 || c.MaxTokens > 8192 {
		return fmt.Errorf("invalid max_tokens: %d (must be between 1 and 8192)", c.MaxTokens)
	}

	if c.Placeholder == "" {
		return fmt.Errorf("placeholder cannot be empty")
	}

	switch c.BusyCue {
	case BusyCueNone, BusyCueBeep, BusyCueNotify:
	default:
		return fmt.Errorf("invalid busy_cue: %s (must be 'none', 'beep' or 'notify')", c.BusyCue)
	}

	switch c.Listener {
	case ListenerHook, ListenerRegister:
	default:
		return fmt.Errorf("invalid listener: %s (must be 'hook' or 'register')", c.Listener)
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if c.SettingsPort < 1024 || c.SettingsPort > 65535 {
		return fmt.Errorf("invalid settings_port: %d (must be between 1024 and 65535)", c.SettingsPort)
	}

	timings := map[string]int{
		"settle_ms":           c.Timing.SettleMS,
		"modifier_release_ms": c.Timing.ModifierReleaseMS,
		"copy_ms":             c.Timing.CopyMS,
		"paste_focus_ms":      c.Timing.PasteFocusMS,
		"paste_trail_ms":      c.Timing.PasteTrailMS,
		"select_ms":           c.Timing.SelectMS,
	}
	for name, v := range timings {
		if v < 0 || v > 5000 {
			return fmt.Errorf("invalid timing.%s: %d (must be between 0 and 5000)", name, v)
		}
	}

	return nil
}

// ResolvedAPIKey returns the configured key, falling back to ANTHROPIC_API_KEY
func (c *Config) ResolvedAPIKey() string {
	if strings.TrimSpace(c.APIKey) != "" {
		return strings.TrimSpace(c.APIKey)
	}
	return strings.TrimSpace(os.Getenv(EnvAPIKey))
}

// GetConfigDir returns the application configuration directory
func GetConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, AppName)
}
