package hotkey

import (
	"fmt"
	"strings"

	"github.com/yok-tottii/typo/internal/keyboard"
)

// Binding is a modifier set plus one key from the canonical alphabet
type Binding struct {
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Key   string `json:"key"`
}

// Normalize returns a copy with the key in canonical spelling
func (b Binding) Normalize() Binding {
	b.Key = keyboard.NormalizeKey(b.Key)
	return b
}

// HasModifier reports whether at least one modifier is set
func (b Binding) HasModifier() bool {
	return b.Ctrl || b.Alt || b.Shift
}

// Signature returns the canonical, order-independent form "ctrl+alt+shift+key".
// Two bindings conflict iff their signatures are equal.
func (b Binding) Signature() string {
	parts := make([]string, 0, 4)
	if b.Ctrl {
		parts = append(parts, "ctrl")
	}
	if b.Alt {
		parts = append(parts, "alt")
	}
	if b.Shift {
		parts = append(parts, "shift")
	}
	parts = append(parts, keyboard.NormalizeKey(b.Key))
	return strings.Join(parts, "+")
}

// Code returns the physical key code of the binding's key
func (b Binding) Code() (keyboard.Code, bool) {
	return keyboard.CodeForKey(b.Key)
}

// String implements fmt.Stringer
func (b Binding) String() string {
	return FormatHotkey(b)
}

// ParseBinding parses "ctrl+alt+c" style strings (case-insensitive, any modifier order)
func ParseBinding(s string) (Binding, error) {
	var b Binding
	s = strings.TrimSpace(s)
	if s == "" {
		return b, fmt.Errorf("empty hotkey")
	}

	// "ctrl++" would be ambiguous; "+" is not in the alphabet anyway
	parts := strings.Split(strings.ToLower(s), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		switch {
		case !last && (p == "ctrl" || p == "control"):
			b.Ctrl = true
		case !last && (p == "alt" || p == "option"):
			b.Alt = true
		case !last && p == "shift":
			b.Shift = true
		case last:
			b.Key = keyboard.NormalizeKey(p)
		default:
			return Binding{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}
	return b, nil
}

// FormatHotkey returns a human-readable representation such as "Ctrl+Alt+C"
func FormatHotkey(b Binding) string {
	result := ""
	if b.Ctrl {
		result += "Ctrl+"
	}
	if b.Alt {
		result += "Alt+"
	}
	if b.Shift {
		result += "Shift+"
	}
	return result + keyToString(keyboard.NormalizeKey(b.Key))
}

// keyToString converts a canonical key name to a display string
func keyToString(key string) string {
	switch key {
	case "space":
		return "Space"
	case "":
		return "Unknown"
	}
	return strings.ToUpper(key)
}
