package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/fileutil"
)

var (
	// ErrNotBuiltin is returned when an override targets a non built-in action
	ErrNotBuiltin = errors.New("overrides are only allowed for built-in actions")
	// ErrNotFound is returned for an unknown custom prompt id
	ErrNotFound = errors.New("custom prompt not found")
)

// Custom is a user-defined prompt
type Custom struct {
	Label   string `json:"label"`
	Prompt  string `json:"prompt"`
	Enabled bool   `json:"enabled"`
}

// CustomEntry is a Custom with its id, for listings
type CustomEntry struct {
	ID string `json:"id"`
	Custom
}

type document struct {
	Custom    map[string]Custom  `json:"custom"`
	Overrides map[string]*string `json:"overrides"`
}

func emptyDocument() document {
	return document{
		Custom:    make(map[string]Custom),
		Overrides: make(map[string]*string),
	}
}

// Store persists custom prompts and built-in overrides in prompts.json
type Store struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// NewStore opens the store at path. A missing or unreadable file yields an empty store;
// the returned error is informational only.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, doc: emptyDocument()}
	err := s.Reload()
	return s, err
}

// Reload re-reads the file and surfaces parse errors.
// On error the loaded prompts are kept, so the next write does not drop them.
func (s *Store) Reload() error {
	doc, err := readDocument(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	return nil
}

func readDocument(path string) (document, error) {
	doc := emptyDocument()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read prompts file: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return emptyDocument(), fmt.Errorf("failed to parse prompts file: %w", err)
	}
	if doc.Custom == nil {
		doc.Custom = make(map[string]Custom)
	}
	if doc.Overrides == nil {
		doc.Overrides = make(map[string]*string)
	}
	return doc, nil
}

// commitLocked persists next and swaps it in only if the write succeeded
func (s *Store) commitLocked(next document) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save prompts: %w", err)
	}
	s.doc = next
	return nil
}

func (s *Store) cloneLocked() document {
	next := emptyDocument()
	for k, v := range s.doc.Custom {
		next.Custom[k] = v
	}
	for k, v := range s.doc.Overrides {
		next.Overrides[k] = v
	}
	return next
}

// SetOverride replaces the template of a built-in action. A nil template resets it to the default.
func (s *Store) SetOverride(name string, tpl *string) error {
	if !action.IsBuiltin(name) {
		return fmt.Errorf("%w: %s", ErrNotBuiltin, name)
	}
	if tpl != nil {
		if err := ValidateTemplate(*tpl); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	if tpl == nil {
		delete(next.Overrides, name)
	} else {
		v := *tpl
		next.Overrides[name] = &v
	}
	return s.commitLocked(next)
}

// SaveCustom creates or replaces a custom prompt
func (s *Store) SaveCustom(id, label, tpl string, enabled bool) error {
	if err := action.ValidateCustomID(id); err != nil {
		return err
	}
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("custom prompt label cannot be empty")
	}
	if err := ValidateTemplate(tpl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	next.Custom[id] = Custom{Label: label, Prompt: tpl, Enabled: enabled}
	return s.commitLocked(next)
}

// DeleteCustom removes a custom prompt
func (s *Store) DeleteCustom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Custom[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := s.cloneLocked()
	delete(next.Custom, id)
	return s.commitLocked(next)
}

// SetEnabled toggles a custom prompt
func (s *Store) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.doc.Custom[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := s.cloneLocked()
	c.Enabled = enabled
	next.Custom[id] = c
	return s.commitLocked(next)
}

// Custom returns one custom prompt
func (s *Store) Custom(id string) (Custom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.doc.Custom[id]
	return c, ok
}

// Customs returns every custom prompt sorted by label
func (s *Store) Customs() []CustomEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]CustomEntry, 0, len(s.doc.Custom))
	for id, c := range s.doc.Custom {
		entries = append(entries, CustomEntry{ID: id, Custom: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		li, lj := strings.ToLower(entries[i].Label), strings.ToLower(entries[j].Label)
		if li != lj {
			return li < lj
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// Overrides returns the active overrides
func (s *Store) Overrides() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.doc.Overrides))
	for k, v := range s.doc.Overrides {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

// OverrideResolver resolves explicit, non-null overrides of built-in actions
func (s *Store) OverrideResolver() Resolver {
	return func(name, _ string) (string, bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if v, ok := s.doc.Overrides[name]; ok && v != nil {
			return *v, true
		}
		return "", false
	}
}

// CustomResolver resolves enabled custom prompts
func (s *Store) CustomResolver() Resolver {
	return func(name, _ string) (string, bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if c, ok := s.doc.Custom[name]; ok && c.Enabled {
			return c.Prompt, true
		}
		return "", false
	}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}
