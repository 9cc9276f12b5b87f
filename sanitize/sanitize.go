// Package sanitize validates untrusted payloads before they can
// influence display state. Sanitizing happens at ingest time, never at
// render time, so a rejected payload leaves the prior record untouched.
package sanitize

import (
	"strings"

	"vfdd/frame"
)

// Sanitize normalizes a raw payload into the canonical two-line frame.
// Undecodable byte sequences are replaced rather than failing; every
// rune that is not a newline and not printable ASCII is stripped, which
// removes control bytes including any embedded device command prefix.
// Returns false when nothing printable remains.
func Sanitize(raw []byte) (frame.Frame, bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range string(raw) {
		if r == '\n' || (r >= 0x20 && r <= 0x7e) {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if strings.TrimSpace(cleaned) == "" {
		return frame.Frame{}, false
	}

	// First two segments only; a missing second line stays empty.
	lines := strings.SplitN(cleaned, "\n", 3)
	f := frame.Frame{Line1: frame.Truncate(lines[0])}
	if len(lines) > 1 {
		f.Line2 = frame.Truncate(lines[1])
	}
	return f, true
}
