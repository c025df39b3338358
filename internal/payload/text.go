package payload

import "strings"

// FromText encodes s one byte per code point, keeping the low 8 bits of each.
func FromText(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return b
}

// ToText decodes b one code point per byte.
func ToText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// Lossy reports whether FromText would truncate any code point of s.
func Lossy(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return true
		}
	}
	return false
}
