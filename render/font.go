package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultWidth = 80
	minColumn    = 20
	minScale     = 0.5
	maxScale     = 3.0
	pxPerEm      = 16.0
)

var ErrFontSize = errors.New("invalid font size")

// ParseFontSize reads a CSS-like size ("100%", "1.2em", "1.2rem", "18px",
// "0.9") as a scale factor where 1 is the default size.
func ParseFontSize(size string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(size))
	div := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s, div = strings.TrimSuffix(s, "%"), 100
	case strings.HasSuffix(s, "rem"):
		s = strings.TrimSuffix(s, "rem")
	case strings.HasSuffix(s, "em"):
		s = strings.TrimSuffix(s, "em")
	case strings.HasSuffix(s, "px"):
		s, div = strings.TrimSuffix(s, "px"), pxPerEm
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFontSize, size)
	}
	scale := v / div
	if scale < minScale || scale > maxScale {
		return 0, fmt.Errorf("%w: %q is out of range", ErrFontSize, size)
	}
	return scale, nil
}

// ColumnWidth is the text column for a viewport width at the given font
// size. A terminal cannot scale glyphs, so larger sizes get a narrower
// column instead. Sizes below 100% use the full width.
func ColumnWidth(width int, fontSize string) int {
	if width <= 0 {
		width = defaultWidth
	}
	scale, err := ParseFontSize(fontSize)
	if err != nil || scale < 1 {
		return width
	}
	col := int(float64(width) / scale)
	if col < minColumn {
		col = min(minColumn, width)
	}
	return col
}
