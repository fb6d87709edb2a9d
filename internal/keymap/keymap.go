// Package keymap translates between human-readable key names and Linux
// evdev key codes.
//
// Canonical names are the lower-cased evdev names without the KEY_ prefix
// ("a", "leftctrl", "f5", "kp7"). Configuration may use a few friendlier
// aliases ("ctrl", "esc", "return") and single punctuation characters, which
// Canonical folds into the canonical spelling.
package keymap

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Keymap is an immutable bidirectional name↔code table. It is safe for
// concurrent use.
type Keymap struct {
	byName map[string]uint16
	byCode map[uint16]string
}

// New builds a Keymap from canonical name→code pairs. Later duplicates of a
// code do not replace the first name registered for it.
func New(codes map[string]uint16) *Keymap {
	k := &Keymap{
		byName: make(map[string]uint16, len(codes)),
		byCode: make(map[uint16]string, len(codes)),
	}
	names := make([]string, 0, len(codes))
	for name := range codes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		code := codes[name]
		k.byName[name] = code
		if _, ok := k.byCode[code]; !ok {
			k.byCode[code] = name
		}
	}
	return k
}

var defaultKeymap = New(evdevCodes)

// Default returns the evdev keymap.
func Default() *Keymap {
	return defaultKeymap
}

// Canonical normalizes name and reports whether it denotes a known key.
// Implements command.KeyResolver.
func (k *Keymap) Canonical(name string) (string, bool) {
	n := Normalize(name)
	_, ok := k.byName[n]
	return n, ok
}

// Code returns the evdev code for a canonical key name.
func (k *Keymap) Code(name string) (uint16, bool) {
	code, ok := k.byName[name]
	return code, ok
}

// Name returns the canonical name for an evdev code.
func (k *Keymap) Name(code uint16) (string, bool) {
	name, ok := k.byCode[code]
	return name, ok
}

// Codes returns every code in the map in ascending order.
func (k *Keymap) Codes() []uint16 {
	out := make([]uint16, 0, len(k.byCode))
	for code := range k.byCode {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns every canonical name in sorted order.
func (k *Keymap) Names() []string {
	out := make([]string, 0, len(k.byName))
	for name := range k.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Normalize folds a key name into canonical spelling without checking that
// the key exists: Unicode NFC, case folding, optional "key_" prefix removal
// and alias expansion.
func Normalize(name string) string {
	if name == " " {
		return "space"
	}
	n := norm.NFC.String(strings.TrimSpace(name))
	n = cases.Fold().String(n)
	n = strings.TrimPrefix(n, "key_")
	if alias, ok := aliases[n]; ok {
		return alias
	}
	return n
}
