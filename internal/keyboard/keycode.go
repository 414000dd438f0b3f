package keyboard

import "strings"

// Code is a physical key code as reported by the global hook (uiohook virtual codes)
type Code uint16

// Modifier and named key codes
const (
	CodeEscape    Code = 0x0001
	CodeMinus     Code = 0x000C
	CodeEquals    Code = 0x000D
	CodeSemicolon Code = 0x0027
	CodeBackslash Code = 0x002B
	CodeComma     Code = 0x0033
	CodePeriod    Code = 0x0034
	CodeSlash     Code = 0x0035
	CodeSpace     Code = 0x0039

	CodeCtrlL  Code = 0x001D
	CodeCtrlR  Code = 0x0E1D
	CodeShiftL Code = 0x002A
	CodeShiftR Code = 0x0036
	CodeAltL   Code = 0x0038
	CodeAltR   Code = 0x0E38
	CodeMetaL  Code = 0x0E5B
	CodeMetaR  Code = 0x0E5C
)

var keyToCode = map[string]Code{
	"1": 0x0002, "2": 0x0003, "3": 0x0004, "4": 0x0005, "5": 0x0006,
	"6": 0x0007, "7": 0x0008, "8": 0x0009, "9": 0x000A, "0": 0x000B,

	"q": 0x0010, "w": 0x0011, "e": 0x0012, "r": 0x0013, "t": 0x0014,
	"y": 0x0015, "u": 0x0016, "i": 0x0017, "o": 0x0018, "p": 0x0019,
	"a": 0x001E, "s": 0x001F, "d": 0x0020, "f": 0x0021, "g": 0x0022,
	"h": 0x0023, "j": 0x0024, "k": 0x0025, "l": 0x0026,
	"z": 0x002C, "x": 0x002D, "c": 0x002E, "v": 0x002F, "b": 0x0030,
	"n": 0x0031, "m": 0x0032,

	",":     CodeComma,
	".":     CodePeriod,
	";":     CodeSemicolon,
	"-":     CodeMinus,
	"=":     CodeEquals,
	"/":     CodeSlash,
	"\\":    CodeBackslash,
	"space": CodeSpace,
}

// aliases accepted from config files and the CLI
var keyAliases = map[string]string{
	"comma":     ",",
	"period":    ".",
	"semicolon": ";",
	"minus":     "-",
	"equals":    "=",
	"equal":     "=",
	"slash":     "/",
	"backslash": "\\",
	" ":         "space",
}

var codeToKey = func() map[Code]string {
	m := make(map[Code]string, len(keyToCode))
	for k, c := range keyToCode {
		m[c] = k
	}
	return m
}()

// NormalizeKey returns the canonical spelling of a key name
func NormalizeKey(name string) string {
	if name == " " {
		return "space"
	}
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := keyAliases[n]; ok {
		return alias
	}
	return n
}

// CodeForKey returns the physical code of a canonical key name
func CodeForKey(name string) (Code, bool) {
	c, ok := keyToCode[NormalizeKey(name)]
	return c, ok
}

// KeyForCode returns the canonical key name for a code
func KeyForCode(c Code) (string, bool) {
	k, ok := codeToKey[c]
	return k, ok
}

// IsValidKey reports whether name belongs to the canonical hotkey alphabet
func IsValidKey(name string) bool {
	_, ok := CodeForKey(name)
	return ok
}

// Keys returns the canonical alphabet
func Keys() []string {
	keys := make([]string, 0, len(keyToCode))
	for k := range keyToCode {
		keys = append(keys, k)
	}
	return keys
}
