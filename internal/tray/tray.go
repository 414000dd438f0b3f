package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// State represents the current application state
type State int

const (
	StateIdle State = iota
	StateBusy
	StateDisabled
	StateError
)

// String returns the status key of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateDisabled:
		return "disabled"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Manager manages the system tray icon and menu
type Manager struct {
	mu      sync.RWMutex
	state   State
	enabled bool
	ready   bool
	config  Config

	menuEnabled  *systray.MenuItem
	menuUsage    *systray.MenuItem
	menuSettings *systray.MenuItem
	menuHelp     *systray.MenuItem
	menuReload   *systray.MenuItem
	menuQuit     *systray.MenuItem

	icons map[State][]byte
}

// Config holds tray manager configuration
type Config struct {
	Title string
	// Label translates a menu or status key such as "menu.settings"
	Label func(key string, params map[string]string) string
	// Usage returns the monthly usage line, empty to hide it
	Usage func() string

	OnReady    func() // Called when systray is ready for initialization
	OnToggle   func(enabled bool)
	OnSettings func()
	OnHelp     func()
	OnReload   func()
	OnQuit     func()
}

// NewManager creates a new tray manager
func NewManager(config Config) *Manager {
	if config.Title == "" {
		config.Title = "Typo"
	}
	if config.Label == nil {
		config.Label = func(key string, _ map[string]string) string { return key }
	}
	return &Manager{
		state:   StateIdle,
		enabled: true,
		config:  config,
		icons: map[State][]byte{
			StateIdle:     renderIcon(colorIdle),
			StateBusy:     renderIcon(colorBusy),
			StateDisabled: renderIcon(colorDisabled),
			StateError:    renderIcon(colorError),
		},
	}
}

// Run starts the system tray (blocking call)
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// onReady is called when systray is ready
func (m *Manager) onReady() {
	label := m.config.Label
	systray.SetTitle("")
	systray.SetTooltip(m.config.Title)

	m.menuEnabled = systray.AddMenuItemCheckbox(label("menu.enabled", nil), "Handle hotkeys", true)
	m.menuUsage = systray.AddMenuItem("", "Usage this month")
	m.menuUsage.Disable()
	systray.AddSeparator()
	m.menuSettings = systray.AddMenuItem(label("menu.settings", nil), "Open settings page")
	m.menuHelp = systray.AddMenuItem(label("menu.help", nil), "Show shortcuts")
	m.menuReload = systray.AddMenuItem(label("menu.reload", nil), "Reload configuration files")
	systray.AddSeparator()
	m.menuQuit = systray.AddMenuItem(label("menu.quit", nil), "Quit the application")

	m.mu.Lock()
	m.ready = true
	m.applyLocked()
	m.mu.Unlock()
	m.RefreshUsage()

	go m.handleMenuEvents()

	if m.config.OnReady != nil {
		m.config.OnReady()
	}
}

// onExit is called when systray is exiting
func (m *Manager) onExit() {
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
}

// handleMenuEvents handles menu item clicks
func (m *Manager) handleMenuEvents() {
	for {
		select {
		case <-m.menuEnabled.ClickedCh:
			enabled := m.toggle()
			if m.config.OnToggle != nil {
				m.config.OnToggle(enabled)
			}
		case <-m.menuSettings.ClickedCh:
			if m.config.OnSettings != nil {
				m.config.OnSettings()
			}
		case <-m.menuHelp.ClickedCh:
			if m.config.OnHelp != nil {
				m.config.OnHelp()
			}
		case <-m.menuReload.ClickedCh:
			if m.config.OnReload != nil {
				m.config.OnReload()
			}
		case <-m.menuQuit.ClickedCh:
			if m.config.OnQuit != nil {
				m.config.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// toggle flips the enabled flag and returns the new value
func (m *Manager) toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = !m.enabled
	m.applyLocked()
	return m.enabled
}

// SetState updates the tray icon based on the current state
func (m *Manager) SetState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.applyLocked()
}

// SetEnabled updates the enabled checkbox without firing OnToggle
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
	m.applyLocked()
}

// State returns the displayed state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.displayedLocked()
}

// displayedLocked folds the enabled flag into the state
func (m *Manager) displayedLocked() State {
	if !m.enabled && m.state != StateBusy {
		return StateDisabled
	}
	return m.state
}

// applyLocked pushes icon, tooltip and checkbox to the tray. No-op until ready.
func (m *Manager) applyLocked() {
	if !m.ready {
		return
	}
	state := m.displayedLocked()
	systray.SetIcon(m.icons[state])
	systray.SetTooltip(m.tooltip(state))
	if m.enabled {
		m.menuEnabled.Check()
	} else {
		m.menuEnabled.Uncheck()
	}
}

func (m *Manager) tooltip(state State) string {
	key := "status." + state.String()
	if state == StateError {
		key = "status.idle"
	}
	return m.config.Title + " - " + m.config.Label(key, nil)
}

// RefreshUsage re-reads the usage line
func (m *Manager) RefreshUsage() {
	m.mu.RLock()
	ready := m.ready
	m.mu.RUnlock()
	if !ready || m.config.Usage == nil {
		return
	}

	line := m.config.Usage()
	if line == "" {
		m.menuUsage.Hide()
		return
	}
	m.menuUsage.SetTitle(m.config.Label("menu.usage", map[string]string{"usage": line}))
	m.menuUsage.Show()
}

// Quit quits the system tray
func (m *Manager) Quit() {
	systray.Quit()
}
