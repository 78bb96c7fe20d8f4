package nav

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Request is one display transition in flight. Only the most recent request
// of a session may complete.
type Request struct {
	Seq      uint64
	Target   Target
	Resume   float64 // relative position inside the chapter to restore, 0 for none
	Renderer Renderer
}

// Valid reports whether the request has anything to display.
func (r Request) Valid() bool { return r.Renderer != nil }

// Rendered is passed to render-completed subscribers.
type Rendered struct {
	Request Request
	Surface *Surface
}

// Session is the reader-session controller: it owns the menu, the active
// item, the live renderer and the session settings.
type Session struct {
	menu     *Menu
	tracker  *Tracker
	factory  RendererFactory
	renderer Renderer
	settings Settings

	seq       uint64
	displayed Target
	progress  float64
	hooks     []func(Rendered)

	log *zap.Logger
}

var errNoRenderer = errors.New("no renderer")

func NewSession(chapters []RawChapter, settings Settings, factory RendererFactory, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if factory == nil {
		return nil, errNoRenderer
	}

	menu, tracker := Build(chapters)
	r, err := factory(settings)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s renderer: %w", settings.Mode, err)
	}

	return &Session{
		menu:     menu,
		tracker:  tracker,
		factory:  factory,
		renderer: r,
		settings: settings,
		log:      log,
	}, nil
}

func (s *Session) Menu() *Menu        { return s.menu }
func (s *Session) Tracker() *Tracker  { return s.tracker }
func (s *Session) Renderer() Renderer { return s.renderer }
func (s *Session) Settings() Settings { return s.settings }
func (s *Session) Displayed() Target  { return s.displayed }

// ActiveLabel returns the menu label of the active chapter.
func (s *Session) ActiveLabel() string {
	key, _ := s.tracker.Current()
	return s.menu.Label(key)
}

// OnRendered subscribes fn to completed displays. Subscribe once per
// session; fn runs for every display that completes.
func (s *Session) OnRendered(fn func(Rendered)) {
	s.hooks = append(s.hooks, fn)
}

// Start requests the initial display: the active chapter, or the first
// document when the book has no table of contents.
func (s *Session) Start() Request {
	key, _ := s.tracker.Current()
	return s.issue(Target{Chapter: key}, 0)
}

// Request asks for href to be displayed.
func (s *Session) Request(href string) Request {
	return s.issue(Resolve(href), 0)
}

// Next requests the chapter after the displayed one.
func (s *Session) Next() (Request, bool) {
	if s.renderer == nil {
		return Request{}, false
	}
	next, ok := s.renderer.Next(s.current())
	if !ok {
		return Request{}, false
	}
	return s.issue(Target{Chapter: next}, 0), true
}

// Prev requests the chapter before the displayed one.
func (s *Session) Prev() (Request, bool) {
	if s.renderer == nil {
		return Request{}, false
	}
	prev, ok := s.renderer.Prev(s.current())
	if !ok {
		return Request{}, false
	}
	return s.issue(Target{Chapter: prev}, 0), true
}

// Latest reports whether req is the most recent request issued on the live
// renderer.
func (s *Session) Latest(req Request) bool {
	return req.Seq == s.seq && req.Renderer == s.renderer
}

// Complete applies a finished display. It returns false when a newer
// request has been issued since, in which case nothing changes.
func (s *Session) Complete(req Request, surface *Surface) bool {
	if !s.Latest(req) {
		s.log.Debug("Dropping stale display",
			zap.Uint64("seq", req.Seq), zap.Uint64("latest", s.seq), zap.String("chapter", req.Target.Chapter))
		return false
	}
	if surface == nil {
		return false
	}

	chapter := req.Target.Chapter
	if chapter == "" && len(surface.Chapters) > 0 {
		chapter = surface.Chapters[0].Key
	}
	s.displayed = Target{Chapter: chapter, Anchor: req.Target.Anchor}
	s.progress = req.Resume
	s.tracker.Activate(chapter)

	s.log.Debug("Display completed", zap.Uint64("seq", req.Seq), zap.String("chapter", chapter),
		zap.String("anchor", req.Target.Anchor), zap.Stringer("mode", s.settings.Mode))

	done := Rendered{Request: req, Surface: surface}
	for _, fn := range s.hooks {
		fn(done)
	}
	return true
}

// Observe records the reading position after a scroll. Crossing into
// another chapter moves the highlight without a display transition.
func (s *Session) Observe(chapter string, progress float64) {
	s.progress = progress
	if chapter == "" || chapter == s.displayed.Chapter {
		return
	}
	s.displayed = Target{Chapter: chapter}
	s.tracker.Activate(chapter)
}

// SwitchMode replaces the renderer with one for mode and redisplays the
// active chapter.
func (s *Session) SwitchMode(mode DisplayMode) (Request, error) {
	return s.rebuild(func(st *Settings) { st.Mode = mode })
}

// Resize rebuilds the renderer for a new text width. The returned request is
// invalid when the width did not change.
func (s *Session) Resize(width int) (Request, error) {
	if width == s.settings.Width && s.renderer != nil {
		return Request{}, nil
	}
	return s.rebuild(func(st *Settings) { st.Width = width })
}

// SetFontSize rebuilds the renderer for a new font size.
func (s *Session) SetFontSize(size string) (Request, error) {
	if size == s.settings.FontSize && s.renderer != nil {
		return Request{}, nil
	}
	return s.rebuild(func(st *Settings) { st.FontSize = size })
}

// SetTheme only changes how surfaces are painted; nothing is re-rendered.
func (s *Session) SetTheme(name string) {
	s.settings.Theme = name
}

// ToggleNested flips between the top-level and the full nested menu.
func (s *Session) ToggleNested() bool {
	s.settings.NestedTOC = !s.settings.NestedTOC
	return s.settings.NestedTOC
}

// Close tears the live renderer down.
func (s *Session) Close() {
	if s.renderer != nil {
		s.renderer.Teardown()
		s.renderer = nil
	}
	s.seq++
}

// rebuild tears the live renderer down before the replacement is created,
// so there is never more than one. If the new settings are rejected the
// previous ones are restored.
func (s *Session) rebuild(change func(*Settings)) (Request, error) {
	key := s.current()
	resume := s.progress

	prev := s.settings
	next := prev
	change(&next)

	if s.renderer != nil {
		s.renderer.Teardown()
		s.renderer = nil
	}

	r, err := s.factory(next)
	if err != nil {
		restored, rerr := s.factory(prev)
		if rerr != nil {
			s.seq++
			return Request{}, multierr.Append(err, fmt.Errorf("unable to restore %s renderer: %w", prev.Mode, rerr))
		}
		s.renderer = restored
		s.log.Warn("Renderer settings rejected", zap.Error(err))
		return s.issue(Target{Chapter: key}, resume), err
	}

	s.settings = next
	s.renderer = r
	s.log.Debug("Renderer replaced", zap.Stringer("mode", next.Mode), zap.Int("width", next.Width),
		zap.String("font-size", next.FontSize), zap.String("chapter", key))
	return s.issue(Target{Chapter: key}, resume), nil
}

func (s *Session) current() string {
	if s.displayed.Chapter != "" {
		return s.displayed.Chapter
	}
	key, _ := s.tracker.Current()
	return key
}

func (s *Session) issue(t Target, resume float64) Request {
	s.seq++
	s.log.Debug("Display requested", zap.Uint64("seq", s.seq), zap.String("chapter", t.Chapter),
		zap.String("anchor", t.Anchor))
	return Request{Seq: s.seq, Target: t, Resume: resume, Renderer: s.renderer}
}
