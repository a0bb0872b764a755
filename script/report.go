package script

import "strings"

// ReportSize is the size of a boot protocol keyboard input report.
const ReportSize = 8

// Modifier bits in the first report byte. Layout entries carry the same
// bits in their high byte.
const (
	ModLeftCtrl  = 0x01
	ModLeftShift = 0x02
	ModLeftAlt   = 0x04
	ModLeftGUI   = 0x08
)

// Report is a boot protocol keyboard input report.
type Report struct {
	Modifiers uint8    // Modifier key state
	Keys      [6]uint8 // Up to 6 simultaneous usage IDs
}

// MarshalTo writes the report to buf and returns the byte count, or zero if
// buf is too short.
func (r *Report) MarshalTo(buf []byte) int {
	if len(buf) < ReportSize {
		return 0
	}
	buf[0] = r.Modifiers
	buf[1] = 0
	copy(buf[2:ReportSize], r.Keys[:])
	return ReportSize
}

// Clear releases all keys and modifiers.
func (r *Report) Clear() {
	r.Modifiers = 0
	r.Keys = [6]uint8{}
}

// SetKey adds key to the key array. It returns false if all slots are in
// use.
func (r *Report) SetKey(key uint8) bool {
	for i := range r.Keys {
		if r.Keys[i] == 0 {
			r.Keys[i] = key
			return true
		}
		if r.Keys[i] == key {
			return true
		}
	}
	return false
}

// Keyboard usage IDs for named keys.
var namedKeys = map[string]uint8{
	"ENTER":       0x28,
	"ESC":         0x29,
	"ESCAPE":      0x29,
	"BACKSPACE":   0x2A,
	"TAB":         0x2B,
	"SPACE":       0x2C,
	"CAPSLOCK":    0x39,
	"F1":          0x3A,
	"F2":          0x3B,
	"F3":          0x3C,
	"F4":          0x3D,
	"F5":          0x3E,
	"F6":          0x3F,
	"F7":          0x40,
	"F8":          0x41,
	"F9":          0x42,
	"F10":         0x43,
	"F11":         0x44,
	"F12":         0x45,
	"PRINTSCREEN": 0x46,
	"SCROLLLOCK":  0x47,
	"PAUSE":       0x48,
	"BREAK":       0x48,
	"INSERT":      0x49,
	"HOME":        0x4A,
	"PAGEUP":      0x4B,
	"DELETE":      0x4C,
	"DEL":         0x4C,
	"END":         0x4D,
	"PAGEDOWN":    0x4E,
	"RIGHT":       0x4F,
	"RIGHTARROW":  0x4F,
	"LEFT":        0x50,
	"LEFTARROW":   0x50,
	"DOWN":        0x51,
	"DOWNARROW":   0x51,
	"UP":          0x52,
	"UPARROW":     0x52,
	"MENU":        0x65,
	"APP":         0x65,
}

var modifierKeys = map[string]uint8{
	"CTRL":    ModLeftCtrl,
	"CONTROL": ModLeftCtrl,
	"SHIFT":   ModLeftShift,
	"ALT":     ModLeftAlt,
	"GUI":     ModLeftGUI,
	"WINDOWS": ModLeftGUI,
}

// isKeyName reports whether word names a key or modifier.
func isKeyName(word string) bool {
	word = strings.ToUpper(word)
	_, key := namedKeys[word]
	_, mod := modifierKeys[word]
	return key || mod
}
