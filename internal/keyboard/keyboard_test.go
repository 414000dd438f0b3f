package keyboard

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
)

func TestCodeForKey(t *testing.T) {
	tests := []struct {
		key  string
		want Code
		ok   bool
	}{
		{"c", 0x002E, true},
		{"C", 0x002E, true},
		{"1", 0x0002, true},
		{"0", 0x000B, true},
		{",", CodeComma, true},
		{"comma", CodeComma, true},
		{"space", CodeSpace, true},
		{" ", CodeSpace, true},
		{"\\", CodeBackslash, true},
		{"f1", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := CodeForKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyForCodeRoundTrip(t *testing.T) {
	for _, k := range Keys() {
		c, ok := CodeForKey(k)
		assert.True(t, ok, k)
		back, ok := KeyForCode(c)
		assert.True(t, ok, k)
		assert.Equal(t, k, back)
	}
	assert.Len(t, Keys(), 26+10+8)
}

func TestStateModifiers(t *testing.T) {
	var s State

	assert.False(t, s.Press(CodeCtrlL))
	assert.True(t, s.Ctrl())
	assert.False(t, s.Alt())

	assert.False(t, s.Press(CodeAltR))
	assert.True(t, s.Alt())

	// auto-repeat on a modifier
	assert.True(t, s.Press(CodeCtrlL))

	s.Release(CodeCtrlL)
	assert.False(t, s.Ctrl())
	assert.True(t, s.Alt())

	s.Press(CodeCtrlR)
	s.Press(CodeCtrlL)
	s.Release(CodeCtrlR)
	assert.True(t, s.Ctrl(), "left ctrl is still down")
}

func TestStateKeysNeverStale(t *testing.T) {
	var s State
	c, _ := CodeForKey("c")

	assert.False(t, s.Press(c))
	assert.True(t, s.Held(c))
	assert.True(t, s.Press(c), "second down without up is a repeat")

	s.Release(c)
	assert.False(t, s.Held(c))
	assert.Equal(t, 0, s.n)

	assert.False(t, s.Press(c), "down after up is a fresh press")
}

func TestStateOverflowDropsOldest(t *testing.T) {
	var s State
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	for _, k := range keys {
		c, _ := CodeForKey(k)
		s.Press(c)
	}
	a, _ := CodeForKey("a")
	i, _ := CodeForKey("i")
	assert.Equal(t, maxHeld, s.n)
	assert.False(t, s.Held(a))
	assert.True(t, s.Held(i))

	s.Reset()
	assert.Equal(t, 0, s.n)
	assert.Equal(t, Modifier(0), s.mods)
}

func TestConvert(t *testing.T) {
	e, ok := convert(hook.Event{Kind: hook.KeyHold, Keycode: 0x2E})
	assert.True(t, ok)
	assert.Equal(t, Event{Kind: Down, Code: 0x2E}, e)

	e, ok = convert(hook.Event{Kind: hook.KeyUp, Keycode: 0x2E})
	assert.True(t, ok)
	assert.Equal(t, Up, e.Kind)

	_, ok = convert(hook.Event{Kind: hook.KeyDown, Keycode: 0})
	assert.False(t, ok)

	_, ok = convert(hook.Event{Kind: hook.MouseMove})
	assert.False(t, ok)
}
