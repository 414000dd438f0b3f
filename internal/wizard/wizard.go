package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Checks are the probes the wizard derives its progress from
type Checks struct {
	// HasAPIKey reports whether a transformation key is configured
	HasAPIKey func() bool
	// Accessibility reports whether synthetic input is permitted
	Accessibility func() bool
}

// SetupWizard tracks the first-run flow: configure a key, grant
// permissions, review the shortcuts
type SetupWizard struct {
	configDir     string
	setupFlagFile string
	checks        Checks
	mu            sync.RWMutex
}

// NewSetupWizard creates a setup wizard rooted at configDir
func NewSetupWizard(configDir string, checks Checks) (*SetupWizard, error) {
	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if checks.HasAPIKey == nil {
		checks.HasAPIKey = func() bool { return false }
	}
	if checks.Accessibility == nil {
		checks.Accessibility = func() bool { return true }
	}

	return &SetupWizard{
		configDir:     configDir,
		setupFlagFile: filepath.Join(configDir, ".setup_completed"),
		checks:        checks,
	}, nil
}

// IsSetupCompleted checks if the user has finished the wizard once
func (w *SetupWizard) IsSetupCompleted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, err := os.Stat(w.setupFlagFile)
	return !os.IsNotExist(err)
}

// MarkSetupCompleted marks the setup wizard as completed
func (w *SetupWizard) MarkSetupCompleted() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.Create(w.setupFlagFile)
	if err != nil {
		return fmt.Errorf("failed to create setup flag file: %w", err)
	}
	file.Close()

	return nil
}

// ShouldShowWizard returns true when the settings page must be opened at startup.
// A missing API key always qualifies, even after the wizard was completed.
func (w *SetupWizard) ShouldShowWizard() bool {
	if !w.checks.HasAPIKey() {
		return true
	}
	return !w.IsSetupCompleted()
}

// SetupProgress holds the completion status of each wizard step
type SetupProgress struct {
	APIKeyConfigured     bool `json:"api_key_configured"`
	AccessibilityGranted bool `json:"accessibility_granted"`
	Completed            bool `json:"completed"`
}

// GetProgress returns the current setup progress
func (w *SetupWizard) GetProgress() SetupProgress {
	return SetupProgress{
		APIKeyConfigured:     w.checks.HasAPIKey(),
		AccessibilityGranted: w.checks.Accessibility(),
		Completed:            w.IsSetupCompleted(),
	}
}

// ResetSetup resets the setup state
func (w *SetupWizard) ResetSetup() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.Remove(w.setupFlagFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove setup flag file: %w", err)
	}

	return nil
}

// GetConfigDir returns the configuration directory
func (w *SetupWizard) GetConfigDir() string {
	return w.configDir
}
