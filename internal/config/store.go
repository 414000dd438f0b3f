package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/yok-tottii/typo/internal/fileutil"
	"github.com/yok-tottii/typo/internal/hotkey"
)

// nestedKeys are merged with the defaults entry by entry instead of replaced wholesale
var nestedKeys = map[string]bool{
	"hotkeys": true,
	"timing":  true,
}

// Store is the config.json document. Reads use dotted gjson paths, writes use sjson.
// Every write is validated and persisted before it becomes visible.
type Store struct {
	mu        sync.RWMutex
	path      string
	doc       []byte
	config    *Config
	listeners []func(*Config)
}

// Open loads the configuration at path. A missing file is created from the defaults,
// seeded with an API key migrated from a legacy .env file when one exists.
// On a corrupt file the store falls back to the defaults and the error is returned
// for information only; the file itself is left untouched.
func Open(path string) (*Store, error) {
	return open(path, LegacyEnvPath())
}

func open(path, envPath string) (*Store, error) {
	s := &Store{path: path}

	if !fileutil.Exists(path) {
		doc := defaultDocument()
		if key := MigrateEnv(envPath); key != "" {
			doc, _ = sjson.SetBytes(doc, "api_key", key)
		}
		cfg, _ := decode(doc)
		s.doc, s.config = doc, cfg
		return s, s.write(doc)
	}

	doc, cfg, err := load(path)
	if err != nil {
		doc = defaultDocument()
		cfg, _ = decode(doc)
	}
	s.doc, s.config = doc, cfg
	return s, err
}

// Reload re-reads the file. Parse and validation errors are returned and the
// current configuration is kept.
func (s *Store) Reload() error {
	doc, cfg, err := load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc, s.config = doc, cfg
	listeners := append([]func(*Config){}, s.listeners...)
	s.mu.Unlock()

	notify(listeners, cfg.Clone())
	return nil
}

func load(path string) ([]byte, *Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Comments and trailing commas are accepted
	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("failed to parse config file: invalid JSON")
	}
	user := gjson.ParseBytes(data)
	if !user.IsObject() {
		return nil, nil, fmt.Errorf("failed to parse config file: top level must be an object")
	}

	doc, err := merge(defaultDocument(), user)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := decode(doc)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config file: %w", err)
	}
	return doc, cfg, nil
}

func defaultDocument() []byte {
	data, _ := json.Marshal(DefaultConfig())
	return data
}

// merge overlays user on defaults: top-level keys replace, nested keys merge per entry
func merge(defaults []byte, user gjson.Result) ([]byte, error) {
	merged := defaults
	var err error

	user.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if nestedKeys[k] && value.IsObject() {
			value.ForEach(func(sub, v gjson.Result) bool {
				merged, err = sjson.SetRawBytes(merged, k+"."+EscapeKey(sub.String()), []byte(v.Raw))
				return err == nil
			})
			return err == nil
		}
		merged, err = sjson.SetRawBytes(merged, EscapeKey(k), []byte(value.Raw))
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	return merged, nil
}

func decode(doc []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Hotkeys == nil {
		cfg.Hotkeys = make(map[string]hotkey.Binding)
	}
	// null marks a default action the user unbound
	gjson.GetBytes(doc, "hotkeys").ForEach(func(name, value gjson.Result) bool {
		if value.Type == gjson.Null {
			delete(cfg.Hotkeys, name.String())
		}
		return true
	})
	return &cfg, nil
}

// EscapeKey escapes a literal key for use as one gjson/sjson path component
func EscapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) write(doc []byte) error {
	if err := fileutil.WriteAtomic(s.path, pretty.Pretty(doc), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the value at a dotted path, e.g. "timing.copy_ms" or "hotkeys.correct.key"
func (s *Store) Get(path string) gjson.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gjson.GetBytes(s.doc, path)
}

// GetString returns the string at path or def
func (s *Store) GetString(path, def string) string {
	if r := s.Get(path); r.Exists() {
		return r.String()
	}
	return def
}

// GetInt returns the integer at path or def
func (s *Store) GetInt(path string, def int) int {
	if r := s.Get(path); r.Exists() {
		return int(r.Int())
	}
	return def
}

// GetBool returns the boolean at path or def
func (s *Store) GetBool(path string, def bool) bool {
	if r := s.Get(path); r.Exists() {
		return r.Bool()
	}
	return def
}

// Set writes one value at a dotted path
func (s *Store) Set(path string, value interface{}) error {
	return s.Update(map[string]interface{}{path: value})
}

// Update applies several dotted-path writes at once. Nothing is applied if any
// write fails or the result does not validate.
func (s *Store) Update(updates map[string]interface{}) error {
	s.mu.Lock()

	next := append([]byte(nil), s.doc...)
	for path, value := range updates {
		var err error
		next, err = sjson.SetBytes(next, path, value)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	cfg, err := s.commitLocked(next)
	listeners := append([]func(*Config){}, s.listeners...)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	notify(listeners, cfg.Clone())
	return nil
}

// SaveHotkeys replaces the whole hotkeys section. Default actions missing from
// bindings are written as null so the defaults do not bring them back on load.
func (s *Store) SaveHotkeys(bindings map[string]hotkey.Binding) error {
	section := make(map[string]*hotkey.Binding, len(bindings))
	for name := range hotkey.DefaultBindings() {
		section[name] = nil
	}
	for name, b := range bindings {
		b := b
		section[name] = &b
	}
	raw, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("failed to marshal hotkeys: %w", err)
	}

	s.mu.Lock()
	next, err := sjson.SetRawBytes(append([]byte(nil), s.doc...), "hotkeys", raw)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to set hotkeys: %w", err)
	}
	_, err = s.commitLocked(next)
	s.mu.Unlock()
	// Hotkey listeners are notified by the registry, not here
	return err
}

func (s *Store) commitLocked(next []byte) (*Config, error) {
	cfg, err := decode(next)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.write(next); err != nil {
		return nil, err
	}
	s.doc, s.config = next, cfg
	return cfg, nil
}

// Config returns a typed snapshot of the configuration
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// Document returns a copy of the raw JSON document
func (s *Store) Document() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.doc...)
}

// OnChange registers a listener called after every successful Set, Update or Reload
func (s *Store) OnChange(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

func notify(listeners []func(*Config), cfg *Config) {
	for _, fn := range listeners {
		fn(cfg)
	}
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Hotkeys = make(map[string]hotkey.Binding, len(c.Hotkeys))
	for k, v := range c.Hotkeys {
		out.Hotkeys[k] = v
	}
	return &out
}
