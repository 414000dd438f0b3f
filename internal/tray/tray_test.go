package tray

import (
	"bytes"
	"image/png"
	"testing"
)

func TestNewManager(t *testing.T) {
	toggled := []bool{}
	manager := NewManager(Config{
		OnToggle: func(enabled bool) { toggled = append(toggled, enabled) },
	})

	if manager == nil {
		t.Fatal("Expected manager to be created")
	}

	if manager.State() != StateIdle {
		t.Errorf("Expected initial state to be StateIdle, got %v", manager.State())
	}

	if manager.config.Title != "Typo" {
		t.Errorf("Expected default title Typo, got %s", manager.config.Title)
	}

	if len(toggled) != 0 {
		t.Error("OnToggle must not fire on creation")
	}
}

func TestStateWithoutTray(t *testing.T) {
	// the tray is not running: state changes are recorded but nothing is drawn
	manager := NewManager(Config{})

	tests := []struct {
		state    State
		enabled  bool
		expected State
	}{
		{StateBusy, true, StateBusy},
		{StateIdle, true, StateIdle},
		{StateIdle, false, StateDisabled},
		{StateBusy, false, StateBusy},
		{StateError, true, StateError},
	}

	for _, tt := range tests {
		manager.SetEnabled(tt.enabled)
		manager.SetState(tt.state)
		if got := manager.State(); got != tt.expected {
			t.Errorf("SetState(%v) enabled=%v: expected %v, got %v", tt.state, tt.enabled, tt.expected, got)
		}
	}
}

func TestToggle(t *testing.T) {
	manager := NewManager(Config{})

	if manager.toggle() {
		t.Error("Expected first toggle to disable")
	}
	if manager.State() != StateDisabled {
		t.Errorf("Expected StateDisabled, got %v", manager.State())
	}
	if !manager.toggle() {
		t.Error("Expected second toggle to enable")
	}
}

func TestTooltip(t *testing.T) {
	manager := NewManager(Config{
		Label: func(key string, _ map[string]string) string {
			return map[string]string{
				"status.idle":     "Idle",
				"status.busy":     "Working",
				"status.disabled": "Disabled",
			}[key]
		},
	})

	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "Typo - Idle"},
		{StateBusy, "Typo - Working"},
		{StateDisabled, "Typo - Disabled"},
		{StateError, "Typo - Idle"},
	}
	for _, tt := range tests {
		if got := manager.tooltip(tt.state); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestIconsAreValidPNG(t *testing.T) {
	manager := NewManager(Config{})

	seen := map[string]State{}
	for _, state := range []State{StateIdle, StateBusy, StateDisabled, StateError} {
		data := manager.icons[state]
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Icon for %v is not a PNG: %v", state, err)
		}
		if img.Bounds().Dx() != iconSize || img.Bounds().Dy() != iconSize {
			t.Errorf("Unexpected icon size %v", img.Bounds())
		}
		if other, dup := seen[string(data)]; dup {
			t.Errorf("Icons for %v and %v are identical", state, other)
		}
		seen[string(data)] = state
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:     "idle",
		StateBusy:     "busy",
		StateDisabled: "disabled",
		StateError:    "error",
		State(42):     "unknown",
	}
	for state, expected := range tests {
		if got := state.String(); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	}
}
