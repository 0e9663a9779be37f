package input

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key identifies a logical keyboard key. Printable keys use their
// lowercased rune value; special keys live above the Unicode range so
// the two sets never collide.
type Key int32

// KeyNone is the absent key. No source ever reports it.
const KeyNone Key = 0

const specialBase Key = 0x110000

const (
	KeyEscape Key = specialBase + iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var specialNames = map[string]Key{
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"space":     Key(' '),
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pgup":      KeyPgUp,
	"pgdn":      KeyPgDn,
	"delete":    KeyDelete,
}

// KeyRune maps a printable rune to its Key. Case folds, so 'A' and 'a'
// are the same key.
func KeyRune(r rune) Key {
	return Key(unicode.ToLower(r))
}

// ParseKey resolves a configured key name: a special name ("escape",
// "enter", "f10"), or a single printable character ("q", "ж").
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return KeyNone, fmt.Errorf("input: empty key name")
	}
	if k, ok := specialNames[name]; ok {
		return k, nil
	}
	if len(name) > 1 && name[0] == 'f' {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 12 {
			return KeyF1 + Key(n-1), nil
		}
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return KeyRune(r), nil
	}
	return KeyNone, fmt.Errorf("input: unknown key %q", s)
}

func (k Key) String() string {
	switch {
	case k == KeyNone:
		return "none"
	case k < specialBase:
		if k == ' ' {
			return "space"
		}
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF12:
		return "f" + strconv.Itoa(int(k-KeyF1)+1)
	}
	for name, key := range specialNames {
		if key == k && name != "esc" && name != "return" {
			return name
		}
	}
	return fmt.Sprintf("key(%d)", int32(k))
}
