package nav

// Span is the line range [Start, End) one chapter occupies on a surface.
type Span struct {
	Key   string
	Start int
	End   int
}

// Surface is one laid-out rendering of a chapter, or of the whole book in
// continuous mode.
type Surface struct {
	Lines    []string
	Chapters []Span

	anchors map[string]int
}

// NewSurface returns an empty surface ready for AddAnchor.
func NewSurface() *Surface {
	return &Surface{anchors: make(map[string]int)}
}

// AddAnchor records the line an element id of chapter starts on. The first
// occurrence wins.
func (s *Surface) AddAnchor(chapter, id string, line int) {
	if id == "" {
		return
	}
	if s.anchors == nil {
		s.anchors = make(map[string]int)
	}
	key := chapter + "#" + id
	if _, ok := s.anchors[key]; !ok {
		s.anchors[key] = line
	}
}

// Anchor looks up an element id inside chapter.
func (s *Surface) Anchor(chapter, id string) (int, bool) {
	if s == nil || id == "" {
		return 0, false
	}
	line, ok := s.anchors[chapter+"#"+id]
	return line, ok
}

// Span returns the line range of chapter.
func (s *Surface) Span(chapter string) (Span, bool) {
	if s == nil {
		return Span{}, false
	}
	for _, sp := range s.Chapters {
		if sp.Key == chapter {
			return sp, true
		}
	}
	return Span{}, false
}

// ChapterAt returns the chapter shown on the given line.
func (s *Surface) ChapterAt(line int) (Span, bool) {
	if s == nil {
		return Span{}, false
	}
	for _, sp := range s.Chapters {
		if line >= sp.Start && line < sp.End {
			return sp, true
		}
	}
	if n := len(s.Chapters); n > 0 && line >= s.Chapters[n-1].End {
		return s.Chapters[n-1], true
	}
	return Span{}, false
}

// Progress returns how far through its chapter the given line is, in [0,1).
func (s *Surface) Progress(line int) (string, float64) {
	sp, ok := s.ChapterAt(line)
	if !ok || sp.End <= sp.Start {
		return sp.Key, 0
	}
	p := float64(line-sp.Start) / float64(sp.End-sp.Start)
	if p < 0 {
		p = 0
	}
	if p >= 1 {
		p = 0.999
	}
	return sp.Key, p
}
