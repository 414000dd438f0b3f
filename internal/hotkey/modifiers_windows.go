//go:build windows

package hotkey

import "golang.design/x/hotkey"

// modifierMap for Windows
var modifierMap = map[modKey]hotkey.Modifier{
	modCtrl:  hotkey.ModCtrl,
	modAlt:   hotkey.ModAlt,
	modShift: hotkey.ModShift,
}
