package clipboard

import (
	"strings"
	"sync"
	"time"
)

// Board reads and writes the system clipboard
type Board interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Keys injects synthetic keyboard input
type Keys interface {
	// Tap presses and releases key with the given modifiers held
	Tap(key string, modifiers ...string) error
	// Toggle presses ("down") or releases ("up") a single key
	Toggle(key string, direction string) error
}

// Config holds the settle delays of the capture protocol.
// The right values depend on the OS and on input-injection latency.
type Config struct {
	Settle          time.Duration // before anything, so the hotkey's own key-ups land (default: 200ms)
	ModifierRelease time.Duration // after forcing modifiers up (default: 100ms)
	Copy            time.Duration // for the foreground app to fill the clipboard (default: 250ms)
	PasteFocus      time.Duration // between clipboard write and paste chord (default: 100ms)
	PasteTrail      time.Duration // after the paste chord (default: 100ms)
	Select          time.Duration // around the backward selection (default: 50ms)
}

// DefaultConfig returns the default capture timings
func DefaultConfig() Config {
	return Config{
		Settle:          200 * time.Millisecond,
		ModifierRelease: 100 * time.Millisecond,
		Copy:            250 * time.Millisecond,
		PasteFocus:      100 * time.Millisecond,
		PasteTrail:      100 * time.Millisecond,
		Select:          50 * time.Millisecond,
	}
}

// releasedModifiers are forced up before the copy chord
var releasedModifiers = []string{"ctrl", "rctrl", "alt", "ralt", "shift", "rshift"}

// Manager drives the synthetic copy / paste / select protocol.
// Every method is best-effort and never returns an error.
type Manager struct {
	board    Board
	keys     Keys
	mu       sync.RWMutex
	config   Config
	chordMod string
	sleep    func(time.Duration)
}

// NewManager creates a new capture manager
func NewManager(config Config, board Board, keys Keys) *Manager {
	return &Manager{
		board:    board,
		keys:     keys,
		config:   config,
		chordMod: chordModifier,
		sleep:    time.Sleep,
	}
}

// SetConfig replaces the timings. Operations already running keep the timings they started with.
func (m *Manager) SetConfig(config Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
}

// Config returns the current timings
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// CaptureSelection copies the current selection of the focused application and reads it back.
// It returns false when nothing was selected or the clipboard could not be read.
func (m *Manager) CaptureSelection() (string, bool) {
	cfg := m.Config()
	m.sleep(cfg.Settle)

	for _, mod := range releasedModifiers {
		_ = m.keys.Toggle(mod, "up")
	}
	m.sleep(cfg.ModifierRelease)

	// empty sentinel: a copy that did nothing leaves it empty
	_ = m.board.WriteAll("")

	_ = m.keys.Tap("c", m.chordMod)
	m.sleep(cfg.Copy)

	text, err := m.board.ReadAll()
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// ReplaceSelection pastes text over the current selection
func (m *Manager) ReplaceSelection(text string) {
	cfg := m.Config()
	_ = m.board.WriteAll(text)
	m.sleep(cfg.PasteFocus)
	_ = m.keys.Tap("v", m.chordMod)
	m.sleep(cfg.PasteTrail)
}

// SelectLastPasted extends the selection backward over the last n characters
func (m *Manager) SelectLastPasted(n int) {
	if n <= 0 {
		return
	}
	cfg := m.Config()
	m.sleep(cfg.Select)
	_ = m.keys.Toggle("shift", "down")
	for i := 0; i < n; i++ {
		_ = m.keys.Tap("left")
	}
	_ = m.keys.Toggle("shift", "up")
	m.sleep(cfg.Select)
}
