package hotkey

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yok-tottii/typo/internal/action"
)

// Persister stores the binding set
type Persister interface {
	SaveHotkeys(bindings map[string]Binding) error
}

// DefaultBindings returns the compiled-in binding set
func DefaultBindings() map[string]Binding {
	b := map[string]Binding{
		action.Correct:           {Ctrl: true, Alt: true, Key: "c"},
		action.Format:            {Ctrl: true, Alt: true, Key: "f"},
		action.Reformulate:       {Ctrl: true, Alt: true, Key: "r"},
		action.Professional:      {Ctrl: true, Alt: true, Key: "p"},
		action.Translate:         {Ctrl: true, Alt: true, Key: "t"},
		action.HelpName:          {Ctrl: true, Alt: true, Key: ","},
		action.SnippetSearchName: {Ctrl: true, Alt: true, Key: "s"},
	}
	for n := action.MinSlot; n <= action.MaxSlot; n++ {
		b[action.SlotName(n)] = Binding{Ctrl: true, Shift: true, Key: fmt.Sprint(n)}
	}
	return b
}

// Registry holds the action → binding map and guards its invariants
type Registry struct {
	mu        sync.RWMutex
	bindings  map[string]Binding
	persister Persister
	listeners []func(map[string]Binding)

	// generation counts commits; listeners only ever move forward to a newer one
	generation uint64
	notifyMu   sync.Mutex
	delivered  uint64
}

// NewRegistry creates a registry from persisted bindings.
// Entries that fail validation or collide with an earlier entry are dropped and reported.
func NewRegistry(initial map[string]Binding, persister Persister) (*Registry, []error) {
	bindings, problems := sanitize(initial)
	return &Registry{bindings: bindings, persister: persister}, problems
}

// Load replaces every binding with a set read back from storage, without persisting it.
// Bad entries are dropped the same way NewRegistry drops them.
func (r *Registry) Load(bindings map[string]Binding) []error {
	next, problems := sanitize(bindings)

	r.mu.Lock()
	deliver := r.commitLocked(next)
	r.mu.Unlock()

	deliver()
	return problems
}

func sanitize(initial map[string]Binding) (map[string]Binding, []error) {
	out := make(map[string]Binding, len(initial))
	var problems []error
	seen := make(map[string]string)
	for _, name := range sortedActions(initial) {
		b := initial[name].Normalize()
		if _, err := action.Parse(name); err != nil {
			problems = append(problems, fmt.Errorf("hotkey %s: %w", name, err))
			continue
		}
		if err := Validate(b); err != nil {
			problems = append(problems, fmt.Errorf("hotkey %s: %w", name, err))
			continue
		}
		if other, ok := seen[b.Signature()]; ok {
			problems = append(problems, fmt.Errorf("hotkey %s: %w", name,
				&ValidationError{Reason: ReasonConflict, Binding: b, Conflicts: []string{other}}))
			continue
		}
		seen[b.Signature()] = name
		out[name] = b
	}
	return out, problems
}

// Bindings returns a snapshot of the current bindings
func (r *Registry) Bindings() map[string]Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneBindings(r.bindings)
}

// Get returns the binding of an action
func (r *Registry) Get(name string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[name]
	return b, ok
}

// Conflicts returns every action other than excluding whose binding has the same signature as b
func (r *Registry) Conflicts(b Binding, excluding string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conflictsLocked(b, excluding)
}

func (r *Registry) conflictsLocked(b Binding, excluding string) []string {
	sig := b.Signature()
	var names []string
	for name, existing := range r.bindings {
		if name == excluding {
			continue
		}
		if existing.Signature() == sig {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Update validates, checks conflicts, persists and commits a binding.
// Nothing changes if any step fails.
func (r *Registry) Update(name string, b Binding) error {
	if _, err := action.Parse(name); err != nil {
		return &ValidationError{Reason: ReasonBadAction, Binding: b, Detail: err.Error()}
	}
	b = b.Normalize()
	if err := Validate(b); err != nil {
		return err
	}

	r.mu.Lock()
	if conflicts := r.conflictsLocked(b, name); len(conflicts) > 0 {
		r.mu.Unlock()
		return &ValidationError{Reason: ReasonConflict, Binding: b, Conflicts: conflicts}
	}

	next := cloneBindings(r.bindings)
	next[name] = b
	if err := r.persistLocked(next); err != nil {
		r.mu.Unlock()
		return err
	}
	deliver := r.commitLocked(next)
	r.mu.Unlock()

	deliver()
	return nil
}

// Remove unbinds an action
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, ok := r.bindings[name]; !ok {
		r.mu.Unlock()
		return nil
	}
	next := cloneBindings(r.bindings)
	delete(next, name)
	if err := r.persistLocked(next); err != nil {
		r.mu.Unlock()
		return err
	}
	deliver := r.commitLocked(next)
	r.mu.Unlock()

	deliver()
	return nil
}

// ResetToDefaults replaces the whole binding set with the compiled-in defaults
func (r *Registry) ResetToDefaults() error {
	defaults := DefaultBindings()

	r.mu.Lock()
	if err := r.persistLocked(defaults); err != nil {
		r.mu.Unlock()
		return err
	}
	deliver := r.commitLocked(defaults)
	r.mu.Unlock()

	deliver()
	return nil
}

// OnChange registers a callback invoked with the new bindings after every commit
func (r *Registry) OnChange(fn func(map[string]Binding)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) persistLocked(bindings map[string]Binding) error {
	if r.persister == nil {
		return nil
	}
	if err := r.persister.SaveHotkeys(cloneBindings(bindings)); err != nil {
		return fmt.Errorf("failed to save hotkeys: %w", err)
	}
	return nil
}

// commitLocked swaps next in and returns the listener notification, to be run after r.mu is released
func (r *Registry) commitLocked(next map[string]Binding) func() {
	r.bindings = next
	r.generation++
	gen := r.generation
	snapshot := cloneBindings(next)
	listeners := append([]func(map[string]Binding){}, r.listeners...)
	return func() { r.deliver(gen, listeners, snapshot) }
}

// deliver notifies listeners unless a newer commit was already delivered
func (r *Registry) deliver(gen uint64, listeners []func(map[string]Binding), snapshot map[string]Binding) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if gen <= r.delivered {
		return
	}
	r.delivered = gen
	notify(listeners, snapshot)
}

func notify(listeners []func(map[string]Binding), snapshot map[string]Binding) {
	for _, fn := range listeners {
		fn(cloneBindings(snapshot))
	}
}

func cloneBindings(in map[string]Binding) map[string]Binding {
	out := make(map[string]Binding, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// sortedActions orders names so built-ins load before customs and slots, deterministically
func sortedActions(m map[string]Binding) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		bi, bj := action.IsBuiltin(names[i]), action.IsBuiltin(names[j])
		if bi != bj {
			return bi
		}
		return names[i] < names[j]
	})
	return names
}
