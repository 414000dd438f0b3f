package hotkey

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.design/x/hotkey"

	"github.com/yok-tottii/typo/internal/keyboard"
)

// modKey is a platform-independent modifier, mapped per OS in modifiers_*.go
type modKey int

const (
	modCtrl modKey = iota
	modAlt
	modShift
)

var registerKeys = func() map[string]hotkey.Key {
	m := map[string]hotkey.Key{"space": hotkey.KeySpace}
	letters := []hotkey.Key{
		hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE, hotkey.KeyF, hotkey.KeyG,
		hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ, hotkey.KeyK, hotkey.KeyL, hotkey.KeyM, hotkey.KeyN,
		hotkey.KeyO, hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR, hotkey.KeyS, hotkey.KeyT, hotkey.KeyU,
		hotkey.KeyV, hotkey.KeyW, hotkey.KeyX, hotkey.KeyY, hotkey.KeyZ,
	}
	for i, k := range letters {
		m[string(rune('a'+i))] = k
	}
	digits := []hotkey.Key{
		hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
		hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
	}
	for i, k := range digits {
		m[string(rune('0'+i))] = k
	}
	return m
}()

// toRegistration converts a binding into OS hotkey parameters
func toRegistration(b Binding) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := registerKeys[keyboard.NormalizeKey(b.Key)]
	if !ok {
		return nil, 0, fmt.Errorf("key %q cannot be registered as a system hotkey", b.Key)
	}
	var mods []hotkey.Modifier
	if b.Ctrl {
		mods = append(mods, modifierMap[modCtrl])
	}
	if b.Alt {
		mods = append(mods, modifierMap[modAlt])
	}
	if b.Shift {
		mods = append(mods, modifierMap[modShift])
	}
	return mods, key, nil
}

// Manager registers every binding as an OS hotkey and replays presses as raw key events.
// It is the fallback listener where a global keyboard hook is unavailable.
type Manager struct {
	hks       []*hotkey.Hotkey
	bindings  map[string]Binding
	eventChan chan keyboard.Event
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
	onError   func(action string, err error)
}

// New creates a new hotkey manager for the given bindings
func New(bindings map[string]Binding) *Manager {
	return &Manager{
		bindings:  cloneBindings(bindings),
		eventChan: make(chan keyboard.Event, 32),
		stopChan:  make(chan struct{}),
	}
}

// OnError sets a callback for bindings that could not be registered
func (m *Manager) OnError(fn func(action string, err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Start registers the hotkeys and returns the synthesized event stream
func (m *Manager) Start(ctx context.Context) (<-chan keyboard.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil, fmt.Errorf("hotkey is already running, call Stop() first")
	}

	// Recreate channels (they may have been closed by a previous Stop())
	m.stopChan = make(chan struct{})
	m.eventChan = make(chan keyboard.Event, 32)

	names := make([]string, 0, len(m.bindings))
	for name := range m.bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b := m.bindings[name]
		mods, key, err := toRegistration(b)
		if err == nil {
			hk := hotkey.New(mods, key)
			if err = hk.Register(); err == nil {
				m.hks = append(m.hks, hk)
				m.wg.Add(1)
				go m.listen(hk, b)
				continue
			}
			err = fmt.Errorf("failed to register hotkey: %w", err)
		}
		if m.onError != nil {
			m.onError(name, err)
		}
	}

	if len(m.hks) == 0 && len(names) > 0 {
		close(m.stopChan)
		close(m.eventChan)
		return nil, fmt.Errorf("no hotkey could be registered")
	}

	m.running = true

	go func() {
		select {
		case <-ctx.Done():
			m.Stop()
		case <-m.stopChan:
		}
	}()

	return m.eventChan, nil
}

// listen replays one registered hotkey as modifier + key down/up events
func (m *Manager) listen(hk *hotkey.Hotkey, b Binding) {
	defer m.wg.Done()

	code, _ := b.Code()
	mods := bindingModifierCodes(b)

	for {
		select {
		case <-hk.Keydown():
			for _, c := range mods {
				m.emit(keyboard.Event{Kind: keyboard.Down, Code: c})
			}
			m.emit(keyboard.Event{Kind: keyboard.Down, Code: code})

		case <-hk.Keyup():
			m.emit(keyboard.Event{Kind: keyboard.Up, Code: code})
			for i := len(mods) - 1; i >= 0; i-- {
				m.emit(keyboard.Event{Kind: keyboard.Up, Code: mods[i]})
			}

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) emit(e keyboard.Event) {
	select {
	case m.eventChan <- e:
	case <-m.stopChan:
	}
}

func bindingModifierCodes(b Binding) []keyboard.Code {
	var codes []keyboard.Code
	if b.Ctrl {
		codes = append(codes, keyboard.CodeCtrlL)
	}
	if b.Alt {
		codes = append(codes, keyboard.CodeAltL)
	}
	if b.Shift {
		codes = append(codes, keyboard.CodeShiftL)
	}
	return codes
}

// Stop unregisters every hotkey and closes the event stream
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	// Signal the listeners to stop
	close(m.stopChan)

	// Wait for the listener goroutines to finish
	m.wg.Wait()

	// Keep going on errors so every hotkey is cleaned up
	for _, hk := range m.hks {
		_ = hk.Unregister()
	}
	m.hks = nil

	// Close event channel to notify consumers of shutdown
	close(m.eventChan)

	m.running = false
}

// IsRunning returns whether the hotkeys are currently registered
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
