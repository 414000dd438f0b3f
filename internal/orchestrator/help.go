package orchestrator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/i18n"
)

// helpOrder ranks action kinds in the help text
var helpOrder = map[action.Kind]int{
	action.Builtin:       0,
	action.Custom:        1,
	action.SnippetSearch: 2,
	action.SnippetSlot:   3,
	action.Help:          4,
}

// BuildHelp renders one "Ctrl+Alt+C : Correct" line per binding.
// customLabel resolves the display label of custom prompts; it may be nil.
func BuildHelp(bindings map[string]hotkey.Binding, t *i18n.Translator, customLabel func(id string) (string, bool)) string {
	type line struct {
		a     action.Action
		label string
		keys  string
	}

	var lines []line
	for name, b := range bindings {
		a, err := action.Parse(name)
		if err != nil {
			continue
		}
		lines = append(lines, line{a: a, label: actionLabel(a, t, customLabel), keys: hotkey.FormatHotkey(b)})
	}

	sort.Slice(lines, func(i, j int) bool {
		oi, oj := helpOrder[lines[i].a.Kind], helpOrder[lines[j].a.Kind]
		if oi != oj {
			return oi < oj
		}
		if lines[i].a.Kind == action.Builtin {
			return builtinIndex(lines[i].a.ID) < builtinIndex(lines[j].a.ID)
		}
		if lines[i].a.Kind == action.SnippetSlot {
			return lines[i].a.Slot < lines[j].a.Slot
		}
		return lines[i].label < lines[j].label
	})

	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.keys)
		sb.WriteString(" : ")
		sb.WriteString(l.label)
	}
	return sb.String()
}

func actionLabel(a action.Action, t *i18n.Translator, customLabel func(string) (string, bool)) string {
	switch a.Kind {
	case action.Custom:
		if customLabel != nil {
			if label, ok := customLabel(a.ID); ok {
				return label
			}
		}
		return a.ID
	case action.SnippetSlot:
		if t == nil {
			return a.ID
		}
		return t.TranslateWithFormat("action.snippet_slot", map[string]string{"slot": strconv.Itoa(a.Slot)})
	default:
		if t == nil {
			return a.ID
		}
		return t.ActionLabel(a.ID)
	}
}

func builtinIndex(name string) int {
	for i, b := range action.BuiltinNames {
		if b == name {
			return i
		}
	}
	return len(action.BuiltinNames)
}
