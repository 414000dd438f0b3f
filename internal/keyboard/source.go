package keyboard

import (
	"context"
	"fmt"
	"sync"

	hook "github.com/robotn/gohook"
)

// EventKind distinguishes presses from releases
type EventKind int

const (
	// Down is a key press (including OS auto-repeat)
	Down EventKind = iota
	// Up is a key release
	Up
)

// Event is a single raw keyboard event
type Event struct {
	Kind EventKind
	Code Code
}

// Source produces a global stream of raw key events
type Source interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// HookSource reads the global keyboard through a low-level hook
type HookSource struct {
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewHookSource creates a hook-backed source
func NewHookSource() *HookSource {
	return &HookSource{}
}

// Start installs the hook and returns the event channel.
// The channel is closed when ctx is cancelled or Stop is called.
func (s *HookSource) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, fmt.Errorf("keyboard hook is already running")
	}

	raw := hook.Start()
	out := make(chan Event, 64)
	s.done = make(chan struct{})
	s.running = true

	go func(done chan struct{}) {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				s.Stop()
				return
			case <-done:
				return
			case ev, ok := <-raw:
				if !ok {
					return
				}
				if e, ok := convert(ev); ok {
					select {
					case out <- e:
					case <-done:
						return
					}
				}
			}
		}
	}(s.done)

	return out, nil
}

// Stop removes the hook
func (s *HookSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.done)
	hook.End()
	s.running = false
}

// convert maps a hook event to an Event; mouse and unknown events are skipped
func convert(ev hook.Event) (Event, bool) {
	if ev.Keycode == 0 {
		return Event{}, false
	}
	switch ev.Kind {
	case hook.KeyHold, hook.KeyDown:
		return Event{Kind: Down, Code: Code(ev.Keycode)}, true
	case hook.KeyUp:
		return Event{Kind: Up, Code: Code(ev.Keycode)}, true
	}
	return Event{}, false
}

// ChanSource is a Source fed by the caller. Used by the register listener and tests.
type ChanSource struct {
	ch   chan Event
	once sync.Once
}

// NewChanSource creates a source with the given buffer size
func NewChanSource(buffer int) *ChanSource {
	return &ChanSource{ch: make(chan Event, buffer)}
}

// Start returns the underlying channel
func (s *ChanSource) Start(ctx context.Context) (<-chan Event, error) {
	return s.ch, nil
}

// Send pushes an event into the stream
func (s *ChanSource) Send(e Event) {
	s.ch <- e
}

// Stop closes the stream
func (s *ChanSource) Stop() {
	s.once.Do(func() { close(s.ch) })
}
