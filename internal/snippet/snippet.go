package snippet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/fileutil"
)

var (
	// ErrNotFound is returned for an unknown snippet id
	ErrNotFound = errors.New("snippet not found")
	// ErrInvalidSlot is returned for a slot outside 1..9
	ErrInvalidSlot = fmt.Errorf("hotkey slot must be between %d and %d", action.MinSlot, action.MaxSlot)
)

// Snippet is a static block of text, optionally bound to a hotkey slot
type Snippet struct {
	ID         string `json:"id" yaml:"id,omitempty"`
	Label      string `json:"label" yaml:"label"`
	Content    string `json:"content" yaml:"content"`
	HotkeySlot *int   `json:"hotkey_slot" yaml:"hotkey_slot,omitempty"`
}

// Slot returns the bound slot, 0 when unbound
func (s Snippet) Slot() int {
	if s.HotkeySlot == nil {
		return 0
	}
	return *s.HotkeySlot
}

type document struct {
	Snippets []Snippet `json:"snippets"`
}

// Store persists snippets in snippets.json
type Store struct {
	mu       sync.RWMutex
	path     string
	snippets []Snippet
	newID    func() string
}

// NewStore opens the store at path. A missing or unreadable file yields an empty store;
// the returned error is informational only.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  path,
		newID: func() string { return uuid.NewString() },
	}
	err := s.Reload()
	return s, err
}

// Reload re-reads the file and surfaces parse errors.
// On error the loaded snippets are kept, so the next write does not drop them.
func (s *Store) Reload() error {
	snippets, err := readSnippets(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snippets = snippets
	return nil
}

func readSnippets(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snippets file: %w", err)
	}
	return doc.Snippets, nil
}

func (s *Store) commitLocked(next []Snippet) error {
	if next == nil {
		next = []Snippet{}
	}
	data, err := json.MarshalIndent(document{Snippets: next}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snippets: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save snippets: %w", err)
	}
	s.snippets = next
	return nil
}

func (s *Store) cloneLocked() []Snippet {
	out := make([]Snippet, len(s.snippets))
	for i, sn := range s.snippets {
		out[i] = copySnippet(sn)
	}
	return out
}

func copySnippet(sn Snippet) Snippet {
	if sn.HotkeySlot != nil {
		v := *sn.HotkeySlot
		sn.HotkeySlot = &v
	}
	return sn
}

// All returns every snippet sorted by label, case-insensitive
func (s *Store) All() []Snippet {
	s.mu.RLock()
	out := s.cloneLocked()
	s.mu.RUnlock()

	sortByLabel(out)
	return out
}

// Get returns a snippet by id
func (s *Store) Get(id string) (Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sn := range s.snippets {
		if sn.ID == id {
			return copySnippet(sn), true
		}
	}
	return Snippet{}, false
}

// BySlot returns the snippet holding slot n
func (s *Store) BySlot(n int) (Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sn := range s.snippets {
		if sn.HotkeySlot != nil && *sn.HotkeySlot == n {
			return copySnippet(sn), true
		}
	}
	return Snippet{}, false
}

// Slots returns the slot → snippet map
func (s *Store) Slots() map[int]Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]Snippet)
	for _, sn := range s.snippets {
		if sn.HotkeySlot != nil {
			out[*sn.HotkeySlot] = copySnippet(sn)
		}
	}
	return out
}

// Save creates (empty id) or updates a snippet. slot 0 means unbound.
// A slot held by another snippet is taken away from it first.
func (s *Store) Save(label, content string, slot int, id string) (string, error) {
	if strings.TrimSpace(label) == "" {
		return "", fmt.Errorf("snippet label cannot be empty")
	}
	if slot != 0 && (slot < action.MinSlot || slot > action.MaxSlot) {
		return "", ErrInvalidSlot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()

	idx := -1
	if id != "" {
		for i, sn := range next {
			if sn.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}

	var slotPtr *int
	if slot != 0 {
		for i := range next {
			if i != idx && next[i].HotkeySlot != nil && *next[i].HotkeySlot == slot {
				next[i].HotkeySlot = nil
			}
		}
		v := slot
		slotPtr = &v
	}

	if idx >= 0 {
		next[idx].Label = label
		next[idx].Content = content
		next[idx].HotkeySlot = slotPtr
	} else {
		id = s.newID()
		next = append(next, Snippet{ID: id, Label: label, Content: content, HotkeySlot: slotPtr})
	}

	if err := s.commitLocked(next); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a snippet
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Snippet, 0, len(s.snippets))
	for _, sn := range s.snippets {
		if sn.ID != id {
			next = append(next, copySnippet(sn))
		}
	}
	if len(next) == len(s.snippets) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.commitLocked(next)
}

type scored struct {
	score   int
	snippet Snippet
}

// Search ranks snippets against query: label substring +10, label prefix +5, content substring +1.
// Ties are ordered by label. An empty query returns everything. When nothing matches as a
// substring, labels are matched fuzzily instead.
func (s *Store) Search(query string) []Snippet {
	all := s.All()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	var results []scored
	for _, sn := range all {
		label := strings.ToLower(sn.Label)
		score := 0
		if strings.Contains(label, q) {
			score += 10
			if strings.HasPrefix(label, q) {
				score += 5
			}
		}
		if strings.Contains(strings.ToLower(sn.Content), q) {
			score++
		}
		if score > 0 {
			results = append(results, scored{score, sn})
		}
	}

	if len(results) == 0 {
		return fuzzyByLabel(q, all)
	}

	// all is already label-sorted, so a stable sort keeps label order within a score
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	out := make([]Snippet, len(results))
	for i, r := range results {
		out[i] = r.snippet
	}
	return out
}

func fuzzyByLabel(q string, all []Snippet) []Snippet {
	labels := make([]string, len(all))
	for i, sn := range all {
		labels[i] = strings.ToLower(sn.Label)
	}
	matches := fuzzy.Find(q, labels)
	out := make([]Snippet, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out
}

func sortByLabel(snippets []Snippet) {
	sort.SliceStable(snippets, func(i, j int) bool {
		return strings.ToLower(snippets[i].Label) < strings.ToLower(snippets[j].Label)
	})
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}
