package wizard

import (
	"os"
	"path/filepath"
	"testing"
)

func newWizard(t *testing.T, hasKey *bool) *SetupWizard {
	t.Helper()
	w, err := NewSetupWizard(filepath.Join(t.TempDir(), "Typo"), Checks{
		HasAPIKey: func() bool { return *hasKey },
	})
	if err != nil {
		t.Fatalf("Failed to create wizard: %v", err)
	}
	return w
}

func TestNewSetupWizard(t *testing.T) {
	hasKey := false
	w := newWizard(t, &hasKey)

	if _, err := os.Stat(w.GetConfigDir()); err != nil {
		t.Errorf("Expected config directory to be created: %v", err)
	}

	if w.setupFlagFile == "" {
		t.Error("Expected setupFlagFile to be set")
	}
}

func TestMarkAndResetSetup(t *testing.T) {
	hasKey := true
	w := newWizard(t, &hasKey)

	if w.IsSetupCompleted() {
		t.Error("Expected IsSetupCompleted to return false when flag doesn't exist")
	}

	if err := w.MarkSetupCompleted(); err != nil {
		t.Fatalf("Failed to mark setup completed: %v", err)
	}
	if !w.IsSetupCompleted() {
		t.Error("Expected IsSetupCompleted to return true after marking")
	}

	if err := w.ResetSetup(); err != nil {
		t.Fatalf("Failed to reset setup: %v", err)
	}
	if w.IsSetupCompleted() {
		t.Error("Expected IsSetupCompleted to return false after reset")
	}

	// resetting twice is fine
	if err := w.ResetSetup(); err != nil {
		t.Errorf("Expected second reset to succeed, got %v", err)
	}
}

func TestShouldShowWizard(t *testing.T) {
	tests := []struct {
		name      string
		hasKey    bool
		completed bool
		want      bool
	}{
		{"fresh install", false, false, true},
		{"key but not completed", true, false, true},
		{"completed without key", false, true, true},
		{"completed with key", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasKey := tt.hasKey
			w := newWizard(t, &hasKey)
			if tt.completed {
				if err := w.MarkSetupCompleted(); err != nil {
					t.Fatalf("Failed to mark setup completed: %v", err)
				}
			}

			if got := w.ShouldShowWizard(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetProgress(t *testing.T) {
	hasKey := false
	w := newWizard(t, &hasKey)

	p := w.GetProgress()
	if p.APIKeyConfigured || p.Completed {
		t.Errorf("Expected empty progress, got %+v", p)
	}
	if !p.AccessibilityGranted {
		t.Error("Expected accessibility to default to granted")
	}

	hasKey = true
	w.MarkSetupCompleted()
	p = w.GetProgress()
	if !p.APIKeyConfigured || !p.Completed {
		t.Errorf("Expected completed progress, got %+v", p)
	}
}
