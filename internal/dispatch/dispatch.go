package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/keyboard"
	"github.com/yok-tottii/typo/internal/logger"
)

// Handler runs one action. It is called on its own goroutine.
type Handler func(a action.Action)

type entry struct {
	ctrl, alt, shift bool
	code             keyboard.Code
	action           action.Action
}

// Table maps modifier+key combinations to actions. Immutable once built.
type Table struct {
	slots   []entry // snippet slots, checked first
	general []entry
}

// NewTable builds a table from a binding set. Entries whose action name or key
// cannot be parsed are skipped and reported.
func NewTable(bindings map[string]hotkey.Binding) (*Table, []error) {
	t := &Table{}
	var problems []error

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a, err := action.Parse(name)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		b := bindings[name].Normalize()
		code, ok := b.Code()
		if !ok {
			problems = append(problems, fmt.Errorf("hotkey %s: unknown key %q", name, b.Key))
			continue
		}

		e := entry{ctrl: b.Ctrl, alt: b.Alt, shift: b.Shift, code: code, action: a}
		if a.Kind == action.SnippetSlot {
			t.slots = append(t.slots, e)
		} else {
			t.general = append(t.general, e)
		}
	}
	return t, problems
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.slots) + len(t.general)
}

// Match returns the action bound to code under the modifiers held in s.
// The held modifier set must equal the binding's exactly; meta must be up.
func (t *Table) Match(s *keyboard.State, code keyboard.Code) (action.Action, bool) {
	if s.Meta() {
		return action.Action{}, false
	}
	ctrl, alt, shift := s.Ctrl(), s.Alt(), s.Shift()

	for _, group := range [][]entry{t.slots, t.general} {
		for _, e := range group {
			if e.code == code && e.ctrl == ctrl && e.alt == alt && e.shift == shift {
				return e.action, true
			}
		}
	}
	return action.Action{}, false
}

// Dispatcher turns a raw key stream into action invocations.
// Handle must be called from a single goroutine; it never blocks.
type Dispatcher struct {
	table   atomic.Pointer[Table]
	state   keyboard.State
	handler Handler
	log     logger.Interface
	spawn   func(func())
}

// New creates a dispatcher with an empty table
func New(handler Handler, log logger.Interface) *Dispatcher {
	if log == nil {
		log = logger.Nop{}
	}
	d := &Dispatcher{
		handler: handler,
		log:     log,
		spawn:   func(fn func()) { go fn() },
	}
	d.table.Store(&Table{})
	return d
}

// Rebuild swaps in a table built from bindings. Work already spawned is unaffected.
func (d *Dispatcher) Rebuild(bindings map[string]hotkey.Binding) []error {
	t, problems := NewTable(bindings)
	for _, err := range problems {
		d.log.Warn("Skipping hotkey: %v", err)
	}
	d.table.Store(t)
	d.log.Debug("Dispatch table rebuilt with %d entries", t.Len())
	return problems
}

// Handle feeds one event into the state machine
func (d *Dispatcher) Handle(ev keyboard.Event) {
	switch ev.Kind {
	case keyboard.Up:
		d.state.Release(ev.Code)
	case keyboard.Down:
		if repeat := d.state.Press(ev.Code); repeat {
			return
		}
		if keyboard.IsModifier(ev.Code) {
			return
		}
		a, ok := d.table.Load().Match(&d.state, ev.Code)
		if !ok {
			return
		}
		d.log.Debug("Hotkey matched: %s", a.Name())
		d.spawn(func() { d.handler(a) })
	}
}

// Run consumes src until ctx is cancelled or the stream ends
func (d *Dispatcher) Run(ctx context.Context, src keyboard.Source) error {
	events, err := src.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start keyboard source: %w", err)
	}
	defer src.Stop()

	d.state.Reset()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			d.Handle(ev)
		}
	}
}
