package library

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hidez8891/zip"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"epub_reader/nav"
	"epub_reader/utils"
)

var (
	ErrNotEPUB    = errors.New("not an EPUB file")
	ErrNoPackage  = errors.New("package document not found")
	ErrEmptySpine = errors.New("spine has no readable documents")
)

type SpineItem struct {
	ID     string
	Href   string // archive path, the chapter key
	Linear bool
}

// Book is a fully loaded EPUB. It is immutable after Open and safe to read
// from several goroutines.
type Book struct {
	Title    string
	Author   string
	Language string
	Path     string
	Spine    []SpineItem
	TOC      []nav.RawChapter

	docs map[string]*Document
}

// NewBook assembles a book from already parsed parts. Spine items without a
// document are dropped.
func NewBook(title, author string, spine []SpineItem, toc []nav.RawChapter, docs map[string]*Document) *Book {
	b := &Book{Title: title, Author: author, TOC: toc, docs: docs}
	if b.docs == nil {
		b.docs = make(map[string]*Document)
	}
	for _, it := range spine {
		if _, ok := b.docs[it.Href]; ok {
			b.Spine = append(b.Spine, it)
		}
	}
	return b
}

// Document returns the parsed spine document for a chapter key.
func (b *Book) Document(href string) (*Document, bool) {
	d, ok := b.docs[href]
	return d, ok
}

// SpineIndex returns the position of href in the spine, or -1.
func (b *Book) SpineIndex(href string) int {
	for i, it := range b.Spine {
		if it.Href == href {
			return i
		}
	}
	return -1
}

// Linear returns the spine items that are part of the reading order. A
// book whose items are all non-linear reads them all.
func (b *Book) Linear() []SpineItem {
	var out []SpineItem
	for _, it := range b.Spine {
		if it.Linear {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return b.Spine
	}
	return out
}

// Open loads an EPUB from disk: package document, table of contents and
// every spine document.
func Open(fname string, log *zap.Logger) (book *Book, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	ok, err := utils.IsEPUB(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read book (%s): %w", fname, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", fname, ErrNotEPUB)
	}

	r, err := zip.OpenReader(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive (%s): %w", fname, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close archive (%s): %w", fname, cerr))
		}
	}()

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}
	read := func(name string) ([]byte, error) {
		f, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, errMissingEntry)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	opfPath, err := readContainer(read)
	if err != nil {
		return nil, err
	}
	data, err := read(opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPackage, err)
	}
	pkg, err := parsePackage(data, opfPath)
	if err != nil {
		return nil, err
	}

	docs := make(map[string]*Document, len(pkg.spine))
	for _, it := range pkg.spine {
		raw, err := read(it.Href)
		if err != nil {
			log.Warn("Skipping spine document", zap.String("href", it.Href), zap.Error(err))
			continue
		}
		doc, err := ParseDocument(raw)
		if err != nil {
			log.Warn("Unable to parse spine document", zap.String("href", it.Href), zap.Error(err))
			continue
		}
		docs[it.Href] = doc
	}

	toc, err := loadTOC(pkg, read)
	if err != nil {
		log.Warn("Unable to read table of contents, using spine", zap.Error(err))
		toc = nil
	}

	book = NewBook(pkg.title, pkg.author, pkg.spine, toc, docs)
	book.Language = pkg.language
	book.Path = fname
	if len(book.Spine) == 0 {
		return nil, fmt.Errorf("%s: %w", fname, ErrEmptySpine)
	}
	if len(book.TOC) == 0 {
		book.TOC = spineTOC(book)
	}
	if book.Title == "" {
		book.Title = strings.TrimSuffix(path.Base(strings.ReplaceAll(fname, "\\", "/")), path.Ext(fname))
	}

	log.Info("Book opened", zap.String("path", fname), zap.String("title", book.Title),
		zap.Int("spine", len(book.Spine)), zap.Int("toc", len(book.TOC)))
	return book, nil
}
