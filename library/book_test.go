package library

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"epub_reader/nav"
)

const fixtureContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const fixtureOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>  The   Test Book </dc:title>
    <dc:creator>A. Writer</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="cover" href="text/cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="c1" href="text/ch%201.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="gone" href="text/missing.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="cover" linear="no"/>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="gone"/>
  </spine>
</package>`

const fixtureNav = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body>
  <nav epub:type="landmarks"><ol><li><a href="text/cover.xhtml">Cover</a></li></ol></nav>
  <nav epub:type="toc">
    <ol>
      <li><a href="text/ch%201.xhtml">Chapter One</a></li>
      <li><a href="text/ch2.xhtml#s2">Chapter Two</a>
        <ol>
          <li><a href="text/ch2.xhtml#s2a">Part A</a></li>
        </ol>
      </li>
      <li><span>Appendix</span>
        <ol><li><a href="text/ch2.xhtml#app">Notes</a></li></ol>
      </li>
    </ol>
  </nav>
</body>
</html>`

const fixtureNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="p1" playOrder="1">
      <navLabel><text>One</text></navLabel>
      <content src="text/ch%201.xhtml"/>
    </navPoint>
    <navPoint id="p2" playOrder="2">
      <navLabel><text>Two</text></navLabel>
      <content src="text/ch2.xhtml#s2"/>
      <navPoint id="p3" playOrder="3">
        <navLabel><text>Two A</text></navLabel>
        <content src="text/ch2.xhtml#s2a"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`

const fixtureCover = `<html><body><p>cover</p></body></html>`

const fixtureCh1 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Ch 1</title></head>
<body>
  <h1>First Chapter</h1>
  <p>It was a   bright cold day.</p>
  <p>The clocks were striking.</p>
</body>
</html>`

const fixtureCh2 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Second</title></head>
<body>
  <h2 id="s2">Second Chapter</h2>
  <p>Opening words.</p>
  <h3 id="s2a">Part A</h3>
  <p>More words.</p>
  <p><a id="app"></a>Notes follow.</p>
</body>
</html>`

// writeEPUB builds an EPUB in dir from name/content pairs. The mimetype
// entry always comes first and is stored.
func writeEPUB(t *testing.T, dir string, files map[string]string, order ...string) string {
	t.Helper()
	fname := filepath.Join(dir, "book.epub")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("mimetype: %v", err)
	}
	if _, err := w.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("mimetype: %v", err)
	}
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return fname
}

func fixtureFiles() (map[string]string, []string) {
	files := map[string]string{
		"META-INF/container.xml": fixtureContainer,
		"OEBPS/content.opf":      fixtureOPF,
		"OEBPS/nav.xhtml":        fixtureNav,
		"OEBPS/toc.ncx":          fixtureNCX,
		"OEBPS/text/cover.xhtml": fixtureCover,
		"OEBPS/text/ch 1.xhtml":  fixtureCh1,
		"OEBPS/text/ch2.xhtml":   fixtureCh2,
	}
	order := []string{
		"META-INF/container.xml", "OEBPS/content.opf", "OEBPS/nav.xhtml", "OEBPS/toc.ncx",
		"OEBPS/text/cover.xhtml", "OEBPS/text/ch 1.xhtml", "OEBPS/text/ch2.xhtml",
	}
	return files, order
}

func without(order []string, name string) []string {
	var out []string
	for _, o := range order {
		if o != name {
			out = append(out, o)
		}
	}
	return out
}

func TestOpenNavDocument(t *testing.T) {
	files, order := fixtureFiles()
	book, err := Open(writeEPUB(t, t.TempDir(), files, order...), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if book.Title != "The Test Book" {
		t.Errorf("Title = %q", book.Title)
	}
	if book.Author != "A. Writer" || book.Language != "en" {
		t.Errorf("Author = %q, Language = %q", book.Author, book.Language)
	}

	wantSpine := []SpineItem{
		{ID: "cover", Href: "OEBPS/text/cover.xhtml", Linear: false},
		{ID: "c1", Href: "OEBPS/text/ch 1.xhtml", Linear: true},
		{ID: "c2", Href: "OEBPS/text/ch2.xhtml", Linear: true},
	}
	if !reflect.DeepEqual(book.Spine, wantSpine) {
		t.Errorf("Spine = %+v, want %+v", book.Spine, wantSpine)
	}
	if got := len(book.Linear()); got != 2 {
		t.Errorf("Linear() = %d items, want 2", got)
	}

	wantTOC := []nav.RawChapter{
		{Label: "Chapter One", Href: "OEBPS/text/ch 1.xhtml"},
		{Label: "Chapter Two", Href: "OEBPS/text/ch2.xhtml#s2", Subitems: []nav.RawChapter{
			{Label: "Part A", Href: "OEBPS/text/ch2.xhtml#s2a"},
		}},
		{Label: "Appendix", Href: "OEBPS/text/ch2.xhtml#app", Subitems: []nav.RawChapter{
			{Label: "Notes", Href: "OEBPS/text/ch2.xhtml#app"},
		}},
	}
	if !reflect.DeepEqual(book.TOC, wantTOC) {
		t.Errorf("TOC = %+v\nwant %+v", book.TOC, wantTOC)
	}

	// every TOC key must name a spine document
	menu, _ := nav.Build(book.TOC)
	for _, e := range menu.Entries {
		if book.SpineIndex(e.Node.OriginalHref) < 0 {
			t.Errorf("TOC key %q is not in the spine", e.Node.OriginalHref)
		}
	}
}

func TestOpenFallsBackToNCX(t *testing.T) {
	files, order := fixtureFiles()
	book, err := Open(writeEPUB(t, t.TempDir(), files, without(order, "OEBPS/nav.xhtml")...), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []nav.RawChapter{
		{Label: "One", Href: "OEBPS/text/ch 1.xhtml"},
		{Label: "Two", Href: "OEBPS/text/ch2.xhtml#s2", Subitems: []nav.RawChapter{
			{Label: "Two A", Href: "OEBPS/text/ch2.xhtml#s2a"},
		}},
	}
	if !reflect.DeepEqual(book.TOC, want) {
		t.Errorf("TOC = %+v\nwant %+v", book.TOC, want)
	}
}

func TestOpenSynthesisesTOCFromSpine(t *testing.T) {
	files, order := fixtureFiles()
	order = without(without(order, "OEBPS/nav.xhtml"), "OEBPS/toc.ncx")
	book, err := Open(writeEPUB(t, t.TempDir(), files, order...), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []nav.RawChapter{
		{Label: "First Chapter", Href: "OEBPS/text/ch 1.xhtml"},
		{Label: "Second Chapter", Href: "OEBPS/text/ch2.xhtml"},
	}
	if !reflect.DeepEqual(book.TOC, want) {
		t.Errorf("TOC = %+v\nwant %+v", book.TOC, want)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "notes.epub")
	if err := os.WriteFile(plain, []byte("just some text, not an archive at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(plain, nil); !errors.Is(err, ErrNotEPUB) {
		t.Errorf("Open(text file) error = %v, want ErrNotEPUB", err)
	}

	files, order := fixtureFiles()
	noContainer := writeEPUB(t, t.TempDir(), files, without(order, "META-INF/container.xml")...)
	if _, err := Open(noContainer, nil); !errors.Is(err, ErrNoPackage) {
		t.Errorf("Open(no container) error = %v, want ErrNoPackage", err)
	}

	files, order = fixtureFiles()
	order = without(without(without(order, "OEBPS/text/cover.xhtml"), "OEBPS/text/ch 1.xhtml"), "OEBPS/text/ch2.xhtml")
	if _, err := Open(writeEPUB(t, t.TempDir(), files, order...), nil); !errors.Is(err, ErrEmptySpine) {
		t.Errorf("Open(no documents) error = %v, want ErrEmptySpine", err)
	}

	if _, err := Open(filepath.Join(dir, "missing.epub"), nil); err == nil {
		t.Error("Open(missing file) expected error")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"OEBPS", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{"OEBPS/text", "../images/a.png", "OEBPS/images/a.png"},
		{"OEBPS", "text/ch%201.xhtml#s%201", "OEBPS/text/ch 1.xhtml#s%201"},
		{".", "ch1.xhtml#top", "ch1.xhtml#top"},
		{"OEBPS", "#only", "#only"},
		{"OEBPS", "https://example.com/x", "https://example.com/x"},
		{"OEBPS", "", ""},
	}
	for _, tt := range tests {
		if got := resolve(tt.base, tt.href); got != tt.want {
			t.Errorf("resolve(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestNewBookDropsMissingDocuments(t *testing.T) {
	docs := map[string]*Document{"a.xhtml": {Title: "A"}}
	b := NewBook("T", "", []SpineItem{{Href: "a.xhtml", Linear: true}, {Href: "b.xhtml", Linear: true}}, nil, docs)
	if len(b.Spine) != 1 || b.SpineIndex("a.xhtml") != 0 || b.SpineIndex("b.xhtml") != -1 {
		t.Errorf("Spine = %+v", b.Spine)
	}
	if _, ok := b.Document("b.xhtml"); ok {
		t.Error("Document(b.xhtml) should be missing")
	}
}

func TestLoadTOCKeepsCauses(t *testing.T) {
	errNav := errors.New("nav unreadable")
	errNCX := errors.New("ncx unreadable")
	pkg := &opfPackage{navDoc: "OEBPS/nav.xhtml", ncx: "OEBPS/toc.ncx"}
	read := func(name string) ([]byte, error) {
		if name == pkg.navDoc {
			return nil, errNav
		}
		return nil, errNCX
	}

	toc, err := loadTOC(pkg, read)
	if err == nil {
		t.Fatalf("loadTOC() = %v, want an error", toc)
	}
	if !errors.Is(err, errNav) {
		t.Errorf("error %v does not wrap the navigation document failure", err)
	}
	if !errors.Is(err, errNCX) {
		t.Errorf("error %v does not wrap the NCX failure", err)
	}
}
