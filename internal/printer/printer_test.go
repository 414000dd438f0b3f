package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	prevOut, prevErr := out, errOut
	SetOutput(&stdout, &stderr)
	t.Cleanup(func() { SetOutput(prevOut, prevErr) })
	return &stdout, &stderr
}

func TestSuccessAddsCheckmarkOnce(t *testing.T) {
	stdout, _ := capture(t)

	Success("saved\n")
	Success("✓ done\n")
	assert.Equal(t, "✓ saved\n✓ done\n", stdout.String())
}

func TestError(t *testing.T) {
	_, stderr := capture(t)

	err := Error("hotkey rejected", "ctrl+c is reserved", []string{"pick another key", "unbind the other action"})
	assert.EqualError(t, err, "hotkey rejected")
	assert.Contains(t, stderr.String(), "hotkey rejected\n\nctrl+c is reserved\n")
	assert.Contains(t, stderr.String(), "  2. unbind the other action\n")
}
