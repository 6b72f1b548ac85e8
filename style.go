package pictemplate

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Style holds the parsed style attribute of a diagram cell.
//
// A style string looks like "text;html=1;align=center;rotation=-90;": an
// optional leading bare token (the style name) followed by key=value pairs.
type Style struct {
	Name   string
	raw    string
	values map[string]string
}

// ParseStyle parses a diagram style string. Empty tokens are discarded; a
// first token without '=' is taken as the style name.
func ParseStyle(s string) Style {
	st := Style{raw: s, values: make(map[string]string)}
	var tokens []string
	for _, tok := range strings.Split(s, ";") {
		if strings.TrimSpace(tok) != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return st
	}
	if !strings.Contains(tokens[0], "=") {
		st.Name = strings.TrimSpace(tokens[0])
		tokens = tokens[1:]
	}
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			Logger().Debug("ignoring style token without value", "token", tok)
			continue
		}
		st.values[strings.TrimSpace(key)] = value
	}
	return st
}

// String returns the style string the Style was parsed from.
func (s Style) String() string {
	return s.raw
}

// Get returns the value for key, or "" when absent.
func (s Style) Get(key string) string {
	return s.values[key]
}

// Lookup returns the value for key and whether it was present.
func (s Style) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the style keys in sorted order.
func (s Style) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rotation returns the shape rotation in degrees, converted from the
// diagram convention (clockwise on screen) to the counter-clockwise angle
// applied by the compositor. Missing or malformed values give 0.
func (s Style) Rotation() int {
	v, ok := s.values["rotation"]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		Logger().Debug("ignoring malformed rotation", "value", v)
		return 0
	}
	return -int(f)
}

// Alignment is the horizontal alignment of a text slot.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// ParseAlignment parses "left", "center" or "right" (case-insensitive).
// An empty string means center.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft, nil
	case "", "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignCenter, fmt.Errorf("%w: unknown alignment %q", ErrInvalidConfig, s)
}

// ParseHexColor parses "#RRGGBB", "RRGGBB" or "#AARRGGBB" into a color.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(hex) == 6 {
		hex = "FF" + hex
	}
	if !isValidARGB(hex) {
		return color.RGBA{}, fmt.Errorf("%w: invalid color %q", ErrInvalidConfig, s)
	}
	a := parseHexByte(hex, 0)
	// color.RGBA is alpha-premultiplied.
	premul := func(v uint8) uint8 { return uint8(uint32(v) * uint32(a) / 0xff) }
	return color.RGBA{
		R: premul(parseHexByte(hex, 2)),
		G: premul(parseHexByte(hex, 4)),
		B: premul(parseHexByte(hex, 6)),
		A: a,
	}, nil
}

// isValidARGB checks that s is exactly 8 upper-case hex characters.
func isValidARGB(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// parseHexByte parses two hex characters at offset into a uint8.
// Returns 0 on any error (out of range, invalid chars).
func parseHexByte(s string, offset int) uint8 {
	if offset+2 > len(s) {
		return 0
	}
	h := hexVal(s[offset])
	l := hexVal(s[offset+1])
	if h < 0 || l < 0 {
		return 0
	}
	return uint8(h<<4 | l)
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
