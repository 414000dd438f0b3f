package hotkey

import (
	"fmt"
	"strings"

	"github.com/yok-tottii/typo/internal/keyboard"
)

// ReasonCode identifies why a binding was rejected
type ReasonCode string

const (
	ReasonNoModifier ReasonCode = "no_modifier"
	ReasonUnknownKey ReasonCode = "unknown_key"
	ReasonReserved   ReasonCode = "reserved"
	ReasonConflict   ReasonCode = "conflict"
	ReasonBadAction  ReasonCode = "bad_action"
)

// ValidationError is returned when a binding cannot be committed
type ValidationError struct {
	Reason    ReasonCode
	Binding   Binding
	Reserved  *ConflictInfo
	Conflicts []string
	Detail    string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNoModifier:
		return fmt.Sprintf("%s: a hotkey needs at least Ctrl, Alt or Shift", FormatHotkey(e.Binding))
	case ReasonUnknownKey:
		return fmt.Sprintf("key %q is not supported", e.Binding.Key)
	case ReasonReserved:
		return fmt.Sprintf("%s is reserved by the system (%s)", FormatHotkey(e.Binding), e.Reserved.Name)
	case ReasonConflict:
		return fmt.Sprintf("%s is already used by: %s", FormatHotkey(e.Binding), strings.Join(e.Conflicts, ", "))
	case ReasonBadAction:
		return e.Detail
	default:
		return "invalid hotkey"
	}
}

// ConflictInfo represents information about a reserved system shortcut
type ConflictInfo struct {
	Name        string
	Description string
	Binding     Binding
}

// knownConflicts contains shortcuts that are never accepted, whatever the configuration
var knownConflicts = []ConflictInfo{
	{Name: "Copy", Description: "Clipboard copy, used for selection capture", Binding: Binding{Ctrl: true, Key: "c"}},
	{Name: "Paste", Description: "Clipboard paste, used for replacement", Binding: Binding{Ctrl: true, Key: "v"}},
	{Name: "Cut", Description: "Clipboard cut", Binding: Binding{Ctrl: true, Key: "x"}},
	{Name: "Undo", Description: "Undo", Binding: Binding{Ctrl: true, Key: "z"}},
	{Name: "Redo", Description: "Redo", Binding: Binding{Ctrl: true, Key: "y"}},
	{Name: "Select All", Description: "Select all", Binding: Binding{Ctrl: true, Key: "a"}},
	{Name: "Save", Description: "Save document", Binding: Binding{Ctrl: true, Key: "s"}},
	{Name: "Window Menu", Description: "Window system menu", Binding: Binding{Alt: true, Key: "space"}},
	{Name: "Input Switch", Description: "Input method switch", Binding: Binding{Ctrl: true, Key: "space"}},
	{Name: "Task Manager", Description: "Security screen / task manager", Binding: Binding{Ctrl: true, Alt: true, Key: "del"}},
	{Name: "Task Switcher", Description: "Application switcher", Binding: Binding{Alt: true, Key: "tab"}},
	{Name: "Start Menu", Description: "Start menu", Binding: Binding{Ctrl: true, Key: "esc"}},
}

// CheckConflicts returns the reserved system shortcuts matching b
func CheckConflicts(b Binding) []ConflictInfo {
	var conflicts []ConflictInfo
	sig := b.Signature()
	for _, known := range knownConflicts {
		if known.Binding.Signature() == sig {
			conflicts = append(conflicts, known)
		}
	}

	// Shift+key alone would swallow capital letters and symbols while typing
	if b.Shift && !b.Ctrl && !b.Alt {
		conflicts = append(conflicts, ConflictInfo{
			Name:        "Typing",
			Description: "Shift alone produces typed characters",
			Binding:     b,
		})
	}
	return conflicts
}

// Validate checks a binding in isolation: modifiers, alphabet, reserved combinations
func Validate(b Binding) error {
	b = b.Normalize()
	if !b.HasModifier() {
		return &ValidationError{Reason: ReasonNoModifier, Binding: b}
	}
	if !keyboard.IsValidKey(b.Key) {
		return &ValidationError{Reason: ReasonUnknownKey, Binding: b}
	}
	if reserved := CheckConflicts(b); len(reserved) > 0 {
		return &ValidationError{Reason: ReasonReserved, Binding: b, Reserved: &reserved[0]}
	}
	return nil
}
