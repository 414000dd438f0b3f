package action

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies what an action does when its hotkey fires
type Kind int

const (
	// Builtin is one of the fixed text transformations
	Builtin Kind = iota
	// Custom is a user-defined prompt registered under a slug id
	Custom
	// SnippetSlot pastes the snippet bound to a slot
	SnippetSlot
	// SnippetSearch opens the snippet picker
	SnippetSearch
	// Help shows the shortcut overview
	Help
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Builtin:
		return "builtin"
	case Custom:
		return "custom"
	case SnippetSlot:
		return "snippet_slot"
	case SnippetSearch:
		return "snippet_search"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// Built-in transformation names
const (
	Correct      = "correct"
	Format       = "format"
	Reformulate  = "reformulate"
	Professional = "professional"
	Translate    = "translate"
)

// Control action names
const (
	HelpName          = "help"
	SnippetSearchName = "snippet_search"
	snippetPrefix     = "snippet_"
)

// MinSlot and MaxSlot bound snippet slot numbers
const (
	MinSlot = 1
	MaxSlot = 9
)

// BuiltinNames lists the built-in transformations in display order
var BuiltinNames = []string{Correct, Format, Reformulate, Professional, Translate}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Action is a parsed action name
type Action struct {
	Kind Kind
	// ID is the builtin name or the custom prompt id
	ID string
	// Slot is set for SnippetSlot actions
	Slot int
}

// Parse converts a persisted action name into an Action.
// Called once when bindings are loaded, never on the key path.
func Parse(name string) (Action, error) {
	switch name {
	case "":
		return Action{}, fmt.Errorf("empty action name")
	case HelpName:
		return Action{Kind: Help, ID: name}, nil
	case SnippetSearchName:
		return Action{Kind: SnippetSearch, ID: name}, nil
	}

	if IsBuiltin(name) {
		return Action{Kind: Builtin, ID: name}, nil
	}

	if strings.HasPrefix(name, snippetPrefix) {
		n, err := strconv.Atoi(strings.TrimPrefix(name, snippetPrefix))
		if err != nil || n < MinSlot || n > MaxSlot {
			return Action{}, fmt.Errorf("invalid snippet slot action: %s", name)
		}
		return Action{Kind: SnippetSlot, ID: name, Slot: n}, nil
	}

	if err := ValidateCustomID(name); err != nil {
		return Action{}, err
	}
	return Action{Kind: Custom, ID: name}, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(name string) Action {
	a, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return a
}

// ForSlot returns the snippet slot action for n
func ForSlot(n int) Action {
	return Action{Kind: SnippetSlot, ID: SlotName(n), Slot: n}
}

// SlotName returns the persisted name of snippet slot n
func SlotName(n int) string {
	return snippetPrefix + strconv.Itoa(n)
}

// Name returns the persisted name of the action
func (a Action) Name() string {
	return a.ID
}

// IsTransform reports whether the action goes through the capture/transform/replace pipeline
func (a Action) IsTransform() bool {
	return a.Kind == Builtin || a.Kind == Custom
}

// String implements fmt.Stringer
func (a Action) String() string {
	return a.ID
}

// IsBuiltin reports whether name is a built-in transformation
func IsBuiltin(name string) bool {
	for _, b := range BuiltinNames {
		if b == name {
			return true
		}
	}
	return false
}

// ValidateCustomID checks that id can be used as a custom prompt id
func ValidateCustomID(id string) error {
	if !slugPattern.MatchString(id) {
		return fmt.Errorf("invalid custom action id %q: must be a lowercase slug", id)
	}
	if id == HelpName || id == SnippetSearchName || strings.HasPrefix(id, snippetPrefix) {
		return fmt.Errorf("custom action id %q is reserved", id)
	}
	return nil
}

// Slugify derives a custom action id from a display label
func Slugify(label string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case b.Len() > 0 && !lastDash:
			b.WriteByte('_')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
