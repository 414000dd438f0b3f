//go:build linux

package hotkey

import "golang.design/x/hotkey"

// modifierMap for X11: Alt = Mod1
var modifierMap = map[modKey]hotkey.Modifier{
	modCtrl:  hotkey.ModCtrl,
	modAlt:   hotkey.Mod1,
	modShift: hotkey.ModShift,
}
