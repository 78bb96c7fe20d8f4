package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"epub_reader/library"
	"epub_reader/nav"
)

// base holds what both display modes share. The book is immutable, so
// Display may run on any goroutine.
type base struct {
	book   *library.Book
	layout layout
	log    *zap.Logger
	torn   atomic.Bool
}

func (b *base) Teardown() {
	if b.torn.Swap(true) {
		return
	}
	b.log.Debug("Renderer torn down")
}

// Next returns the linear spine document after current. With nothing
// displayed yet it is the first one.
func (b *base) Next(current string) (string, bool) {
	return b.step(current, 1)
}

func (b *base) Prev(current string) (string, bool) {
	return b.step(current, -1)
}

func (b *base) step(current string, dir int) (string, bool) {
	spine := b.book.Spine
	i := b.book.SpineIndex(current)
	if i < 0 && (current != "" || dir < 0) {
		return "", false
	}
	for i += dir; i >= 0 && i < len(spine); i += dir {
		if spine[i].Linear {
			return spine[i].Href, true
		}
	}
	return "", false
}

func (b *base) first() string {
	if lin := b.book.Linear(); len(lin) > 0 {
		return lin[0].Href
	}
	return ""
}

func (b *base) check(ctx context.Context) error {
	if b.torn.Load() {
		return nav.ErrTornDown
	}
	return ctx.Err()
}

// Paged shows one spine document at a time.
type Paged struct {
	base
}

func (p *Paged) Mode() nav.DisplayMode { return nav.Paged }

func (p *Paged) Display(ctx context.Context, chapter string) (*nav.Surface, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	if chapter == "" {
		chapter = p.first()
	}
	doc, ok := p.book.Document(chapter)
	if !ok {
		return nil, fmt.Errorf("%q: %w", chapter, nav.ErrUnknownChapter)
	}

	s := nav.NewSurface()
	p.layout.chapter(s, chapter, doc)
	return s, nil
}

// Continuous lays the whole spine out as one flow. The flow is built on
// first use and shared by later displays; each display only moves the
// target.
type Continuous struct {
	base

	mu   sync.Mutex
	flow *nav.Surface
}

func (c *Continuous) Mode() nav.DisplayMode { return nav.Continuous }

func (c *Continuous) Display(ctx context.Context, chapter string) (*nav.Surface, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	if chapter != "" {
		if _, ok := c.book.Document(chapter); !ok {
			return nil, fmt.Errorf("%q: %w", chapter, nav.ErrUnknownChapter)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow != nil {
		return c.flow, nil
	}

	// Non-linear documents are part of the flow so every table of
	// contents entry has a place to scroll to.
	s := nav.NewSurface()
	for _, it := range c.book.Spine {
		if err := c.check(ctx); err != nil {
			return nil, err
		}
		doc, _ := c.book.Document(it.Href)
		if len(s.Lines) > 0 {
			s.Lines = append(s.Lines, make([]string, c.layout.spacing+1)...)
		}
		c.layout.chapter(s, it.Href, doc)
	}
	c.flow = s
	c.log.Debug("Continuous flow laid out", zap.Int("lines", len(s.Lines)), zap.Int("chapters", len(s.Chapters)))
	return s, nil
}

// NewFactory returns the renderer factory for a book. Every settings change
// that needs a new layout goes through it.
func NewFactory(book *library.Book, lineSpacing int, log *zap.Logger) nav.RendererFactory {
	if log == nil {
		log = zap.NewNop()
	}
	return func(settings nav.Settings) (nav.Renderer, error) {
		if _, err := ParseFontSize(settings.FontSize); err != nil {
			return nil, err
		}
		column := ColumnWidth(settings.Width, settings.FontSize)
		setup := func(b *base) {
			b.book = book
			b.layout = layout{width: column, spacing: max(lineSpacing, 0)}
			b.log = log.With(zap.Stringer("mode", settings.Mode))
			b.log.Debug("Renderer created", zap.Int("column", column), zap.String("font", settings.FontSize))
		}

		if settings.Mode == nav.Continuous {
			c := &Continuous{}
			setup(&c.base)
			return c, nil
		}
		p := &Paged{}
		setup(&p.base)
		return p, nil
	}
}
