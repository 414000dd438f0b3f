package keyboard

// Modifier is a bit flag for one physical modifier key
type Modifier uint8

const (
	LCtrl Modifier = 1 << iota
	RCtrl
	LAlt
	RAlt
	LShift
	RShift
	LMeta
	RMeta
)

// modifierFor maps a code to its modifier flag, 0 if it is not a modifier
func modifierFor(c Code) Modifier {
	switch c {
	case CodeCtrlL:
		return LCtrl
	case CodeCtrlR:
		return RCtrl
	case CodeAltL:
		return LAlt
	case CodeAltR:
		return RAlt
	case CodeShiftL:
		return LShift
	case CodeShiftR:
		return RShift
	case CodeMetaL:
		return LMeta
	case CodeMetaR:
		return RMeta
	}
	return 0
}

// IsModifier reports whether c is a modifier key
func IsModifier(c Code) bool {
	return modifierFor(c) != 0
}

// maxHeld bounds the non-modifier keys tracked at once
const maxHeld = 8

// State tracks which keys are currently down.
// It is owned by a single goroutine (the listener) and is not safe for concurrent use.
type State struct {
	mods Modifier
	held [maxHeld]Code
	n    int
}

// Press records a key-down. It returns true when the key was already down (auto-repeat).
func (s *State) Press(c Code) bool {
	if m := modifierFor(c); m != 0 {
		repeat := s.mods&m != 0
		s.mods |= m
		return repeat
	}

	for i := 0; i < s.n; i++ {
		if s.held[i] == c {
			return true
		}
	}

	if s.n == maxHeld {
		// drop the oldest; a full table means releases were missed
		copy(s.held[:], s.held[1:])
		s.n--
	}
	s.held[s.n] = c
	s.n++
	return false
}

// Release records a key-up
func (s *State) Release(c Code) {
	if m := modifierFor(c); m != 0 {
		s.mods &^= m
		return
	}

	for i := 0; i < s.n; i++ {
		if s.held[i] == c {
			copy(s.held[i:], s.held[i+1:s.n])
			s.n--
			return
		}
	}
}

// Held reports whether a key is currently down
func (s *State) Held(c Code) bool {
	if m := modifierFor(c); m != 0 {
		return s.mods&m != 0
	}
	for i := 0; i < s.n; i++ {
		if s.held[i] == c {
			return true
		}
	}
	return false
}

// Ctrl reports whether either control key is down
func (s *State) Ctrl() bool { return s.mods&(LCtrl|RCtrl) != 0 }

// Alt reports whether either alt key is down
func (s *State) Alt() bool { return s.mods&(LAlt|RAlt) != 0 }

// Shift reports whether either shift key is down
func (s *State) Shift() bool { return s.mods&(LShift|RShift) != 0 }

// Meta reports whether either meta key is down
func (s *State) Meta() bool { return s.mods&(LMeta|RMeta) != 0 }

// Reset forgets every key
func (s *State) Reset() {
	s.mods = 0
	s.n = 0
}
