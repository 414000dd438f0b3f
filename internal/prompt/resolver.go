package prompt

import (
	"errors"
	"strings"
)

// Placeholder is substituted with the captured text
const Placeholder = "{text}"

// ErrMissingPlaceholder is returned when a template does not contain exactly one placeholder
var ErrMissingPlaceholder = errors.New("template must contain the {text} placeholder exactly once")

// Resolver maps an action and a language to a template.
// Resolvers are pure lookups and are composed with Chain.
type Resolver func(action, language string) (string, bool)

// Chain returns the first match of resolvers, tried in order
func Chain(resolvers ...Resolver) Resolver {
	return func(action, language string) (string, bool) {
		for _, r := range resolvers {
			if tpl, ok := r(action, language); ok {
				return tpl, true
			}
		}
		return "", false
	}
}

// DefaultResolver wraps the built-in per-language templates
func DefaultResolver(lookup func(action, language string) (string, bool)) Resolver {
	return func(action, language string) (string, bool) {
		return lookup(action, language)
	}
}

// NewResolver builds the standard precedence: override > enabled custom > built-in default
func NewResolver(store *Store, defaults func(action, language string) (string, bool)) Resolver {
	return Chain(store.OverrideResolver(), store.CustomResolver(), DefaultResolver(defaults))
}

// ValidateTemplate checks the single structural invariant of a template
func ValidateTemplate(tpl string) error {
	if strings.Count(tpl, Placeholder) != 1 {
		return ErrMissingPlaceholder
	}
	return nil
}

// Render substitutes text into a template
func Render(tpl, text string) string {
	return strings.Replace(tpl, Placeholder, text, 1)
}
