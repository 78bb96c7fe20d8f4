package nav

import "strings"

// Target is a resolved navigation reference.
type Target struct {
	Chapter string // the document to display, also the active key
	Anchor  string // element id inside the chapter, empty for none
}

// Resolve splits href at the first '#'.
func Resolve(href string) Target {
	chapter, anchor, _ := strings.Cut(href, "#")
	return Target{Chapter: chapter, Anchor: anchor}
}

// Href joins the target back into a reference.
func (t Target) Href() string {
	if t.Anchor == "" {
		return t.Chapter
	}
	return t.Chapter + "#" + t.Anchor
}

// ScrollOffset returns the first visible line for a completed request on a
// viewport of the given height. An anchor found in the rendered content is
// brought to the bottom of the viewport, but the view never starts above
// the chapter, so the top line always belongs to it. Without an anchor the
// view goes to the top of the chapter, or back to the resumed relative
// position.
func ScrollOffset(s *Surface, req Request, height int) int {
	if s == nil || len(s.Lines) == 0 {
		return 0
	}
	if height < 1 {
		height = 1
	}

	offset := 0
	span, ok := s.Span(req.Target.Chapter)
	if ok {
		offset = span.Start
	}

	if line, found := s.Anchor(req.Target.Chapter, req.Target.Anchor); found {
		offset = line - height + 1
		if ok && offset < span.Start {
			offset = span.Start
		}
	} else if req.Resume > 0 && ok {
		offset = span.Start + int(req.Resume*float64(span.End-span.Start))
	}

	return clampOffset(offset, len(s.Lines), height)
}

func clampOffset(offset, total, height int) int {
	maxOffset := total - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
