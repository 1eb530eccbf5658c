package base

import "strings"

// TruncateString truncates s to maxWidth with a trailing ellipsis, used to
// fit resource addresses and transaction IDs into fixed table columns.
func TruncateString(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return s[:maxWidth]
	}
	return s[:maxWidth-3] + "..."
}

// PadString pads s to width with trailing spaces.
func PadString(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Max returns the larger of a and b, used to clamp layout dimensions that
// must never go negative when the terminal is small.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
