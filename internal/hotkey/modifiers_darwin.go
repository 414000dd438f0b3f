//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// modifierMap for macOS
var modifierMap = map[modKey]hotkey.Modifier{
	modCtrl:  hotkey.ModCtrl,
	modAlt:   hotkey.ModOption,
	modShift: hotkey.ModShift,
}
