package render

import (
	"strings"

	gloss "github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"epub_reader/lang"
	"epub_reader/library"
	"epub_reader/nav"
)

var headingStyle = gloss.NewStyle().Bold(true)

const (
	quotePrefix = "│ "
	bullet      = "• "
	ruleText    = "*   *   *"
)

// layout turns document blocks into terminal lines of a fixed width.
type layout struct {
	width   int // text column
	spacing int // blank lines between blocks
}

// chapter appends doc to the surface as the chapter key and records its
// span and anchors.
func (l layout) chapter(s *nav.Surface, key string, doc *library.Document) {
	start := len(s.Lines)
	var pending []string
	for _, b := range doc.Blocks {
		pending = append(pending, b.Anchors...)
		lines := l.block(b)
		if len(lines) == 0 {
			continue
		}
		if len(s.Lines) > start {
			s.Lines = append(s.Lines, make([]string, l.spacing)...)
		}
		for _, id := range pending {
			s.AddAnchor(key, id, len(s.Lines))
		}
		pending = nil
		s.Lines = append(s.Lines, lines...)
	}
	if len(s.Lines) == start {
		s.Lines = append(s.Lines, lang.Active().Reader.EmptyChapter)
	}
	// anchors after the last text stay inside the chapter
	for _, id := range pending {
		s.AddAnchor(key, id, len(s.Lines)-1)
	}
	s.Chapters = append(s.Chapters, nav.Span{Key: key, Start: start, End: len(s.Lines)})
}

func (l layout) block(b library.Block) []string {
	switch b.Kind {
	case library.BlockRule:
		return []string{center(ruleText, l.width)}
	case library.BlockHeading:
		lines := wrapText(b.Text, l.width)
		for i, ln := range lines {
			lines[i] = headingStyle.Render(ln)
		}
		return lines
	case library.BlockPre:
		if b.Text == "" {
			return nil
		}
		return strings.Split(wrap.String(b.Text, max(l.width, 1)), "\n")
	case library.BlockQuote:
		return prefixed(wrapText(b.Text, l.width-runewidth.StringWidth(quotePrefix)), quotePrefix, quotePrefix)
	case library.BlockListItem:
		indent := strings.Repeat("  ", max(b.Level-1, 0))
		hang := indent + strings.Repeat(" ", runewidth.StringWidth(bullet))
		return prefixed(wrapText(b.Text, l.width-runewidth.StringWidth(hang)), indent+bullet, hang)
	default:
		return wrapText(b.Text, l.width)
	}
}

// wrapText wraps at word boundaries first, then hard wraps whatever is
// still too wide (long URLs, CJK runs without spaces).
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	width = max(width, 1)
	out := strings.Split(wrap.String(wordwrap.String(text, width), width), "\n")
	for i, ln := range out {
		out[i] = strings.TrimRight(ln, " ")
	}
	return out
}

func prefixed(lines []string, first, rest string) []string {
	for i, ln := range lines {
		if i == 0 {
			lines[i] = first + ln
		} else {
			lines[i] = rest + ln
		}
	}
	return lines
}

func center(s string, width int) string {
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
