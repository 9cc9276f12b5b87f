// Package frame defines the two-line display frame and the fixed-width
// formatter that maps frame text onto the device's per-line buffer.
//
// The display shows 15 visible columns per line but its line buffer is
// 20 bytes wide; Format always emits exactly FieldWidth bytes so no
// overflow can ever reach the device.
package frame

import (
	"fmt"
	"strings"
)

const (
	// Width is the number of visible columns per display line.
	Width = 15
	// FieldWidth is the size of the device's per-line buffer.
	FieldWidth = 20
)

// Align selects how a line is positioned within the visible columns.
type Align int

const (
	// AlignAuto centers text unless it carries its own leading or
	// trailing whitespace, in which case the sender's spacing wins and
	// the text is left-justified as-is.
	AlignAuto Align = iota
	AlignCenter
	AlignLeft
)

// ParseAlign maps a config token to an Align value.
func ParseAlign(value string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return AlignAuto, nil
	case "center", "centre":
		return AlignCenter, nil
	case "left":
		return AlignLeft, nil
	}
	return AlignAuto, fmt.Errorf("unknown align %q (want auto, center, or left)", value)
}

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignLeft:
		return "left"
	}
	return "auto"
}

// Frame is one resolved two-line payload. Immutable once produced.
type Frame struct {
	Line1 string
	Line2 string
}

// Empty reports whether both lines are blank.
func (f Frame) Empty() bool {
	return f.Line1 == "" && f.Line2 == ""
}

// Truncate bounds text to the visible column count.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= Width {
		return text
	}
	return string(runes[:Width])
}

// Format maps text onto one fixed-width line field. Truncation happens
// first, then alignment within Width columns, then padding to
// FieldWidth. The result is always exactly FieldWidth runes.
func Format(text string, align Align) string {
	text = Truncate(text)
	switch align {
	case AlignCenter:
		text = center(text)
	case AlignAuto:
		if strings.TrimSpace(text) == text {
			text = center(text)
		}
	}
	return pad(text, FieldWidth)
}

// Render produces the full 2*FieldWidth byte line payload for a frame.
func Render(f Frame, align Align) []byte {
	buf := make([]byte, 0, 2*FieldWidth)
	buf = append(buf, Format(f.Line1, align)...)
	buf = append(buf, Format(f.Line2, align)...)
	return buf
}

// center positions text within the visible columns, extra space going
// to the right.
func center(text string) string {
	n := len([]rune(text))
	if n >= Width {
		return text
	}
	left := (Width - n) / 2
	return strings.Repeat(" ", left) + text
}

func pad(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return text + strings.Repeat(" ", width-n)
}
