package clipboard

import (
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/go-vgo/robotgo"
)

// chordModifier is the modifier of the copy and paste chords on this platform
var chordModifier = func() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}()

// SystemBoard is the OS clipboard
type SystemBoard struct{}

// ReadAll returns the clipboard text
func (SystemBoard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// WriteAll replaces the clipboard text
func (SystemBoard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// RobotKeys injects input through robotgo
type RobotKeys struct{}

// Tap presses and releases key with modifiers held
func (RobotKeys) Tap(key string, modifiers ...string) error {
	if len(modifiers) == 0 {
		return robotgo.KeyTap(key)
	}
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

// Toggle presses or releases key
func (RobotKeys) Toggle(key string, direction string) error {
	return robotgo.KeyToggle(key, direction)
}
