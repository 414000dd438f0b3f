package snippet

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yok-tottii/typo/internal/action"
)

type exportFile struct {
	Snippets []Snippet `yaml:"snippets"`
}

// Export writes every snippet as YAML
func (s *Store) Export(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportFile{Snippets: s.All()}); err != nil {
		return fmt.Errorf("failed to encode snippets: %w", err)
	}
	return enc.Close()
}

// Import reads YAML snippets. With replace, the existing collection is discarded first.
// Imported ids are kept when they do not clash; slots keep last-writer-wins exclusivity.
// It returns the number of imported snippets.
func (s *Store) Import(r io.Reader, replace bool) (int, error) {
	var in exportFile
	if err := yaml.NewDecoder(r).Decode(&in); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to decode snippets: %w", err)
	}

	for i, sn := range in.Snippets {
		if strings.TrimSpace(sn.Label) == "" {
			return 0, fmt.Errorf("snippet %d: label cannot be empty", i+1)
		}
		if sl := sn.Slot(); sn.HotkeySlot != nil && (sl < action.MinSlot || sl > action.MaxSlot) {
			return 0, fmt.Errorf("snippet %q: %w", sn.Label, ErrInvalidSlot)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next []Snippet
	if !replace {
		next = s.cloneLocked()
	}

	ids := make(map[string]bool, len(next))
	for _, sn := range next {
		ids[sn.ID] = true
	}

	for _, sn := range in.Snippets {
		sn = copySnippet(sn)
		for sn.ID == "" || ids[sn.ID] {
			sn.ID = s.newID()
		}
		ids[sn.ID] = true

		if sn.HotkeySlot != nil {
			for i := range next {
				if next[i].HotkeySlot != nil && *next[i].HotkeySlot == *sn.HotkeySlot {
					next[i].HotkeySlot = nil
				}
			}
		}
		next = append(next, sn)
	}

	if err := s.commitLocked(next); err != nil {
		return 0, err
	}
	return len(in.Snippets), nil
}
