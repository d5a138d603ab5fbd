package config

import (
	"strconv"
	"strings"
)

// Anchor is the 1-based cell where a view's data region starts.
type Anchor struct {
	Row int
	Col int
}

// ParseAnchor parses an anchor segment in either of its two forms:
// "row,col" with two positive integers, or an Excel-style coordinate such
// as "B3" (column letters in base-26 with A=1, then the row digits).
// ok is false for anything else; callers fall back to their defaults
// instead of rejecting the surrounding entry.
func ParseAnchor(s string) (Anchor, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Anchor{}, false
	}

	if strings.Contains(s, ",") {
		return parseRowCol(s)
	}
	return parseCellName(s)
}

func parseRowCol(s string) (Anchor, bool) {
	rowStr, colStr, _ := strings.Cut(s, ",")
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return Anchor{}, false
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return Anchor{}, false
	}
	if row < 1 || col < 1 {
		return Anchor{}, false
	}
	return Anchor{Row: row, Col: col}, true
}

func parseCellName(s string) (Anchor, bool) {
	s = strings.ToUpper(s)

	i := 0
	col := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			break
		}
		col = col*26 + int(c-'A'+1)
	}
	if i == 0 || col == 0 {
		return Anchor{}, false
	}

	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return Anchor{}, false
	}
	return Anchor{Row: row, Col: col}, true
}
