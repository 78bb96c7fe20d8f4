package library

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"
	"go.uber.org/multierr"

	"epub_reader/nav"
)

// loadTOC prefers the EPUB 3 navigation document and falls back to the
// EPUB 2 NCX. Both yield hrefs resolved to archive paths.
func loadTOC(pkg *opfPackage, read reader) ([]nav.RawChapter, error) {
	var errs error
	if pkg.navDoc != "" {
		data, err := read(pkg.navDoc)
		if err == nil {
			var toc []nav.RawChapter
			if toc, err = parseNavDocument(data, pkg.navDoc); err == nil && len(toc) > 0 {
				return toc, nil
			}
		}
		errs = multierr.Append(errs, err)
	}
	if pkg.ncx != "" {
		data, err := read(pkg.ncx)
		if err == nil {
			var toc []nav.RawChapter
			if toc, err = parseNCX(data, pkg.ncx); err == nil {
				return toc, nil
			}
		}
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, fmt.Errorf("table of contents: %w", errs)
	}
	return nil, nil
}

func parseNavDocument(data []byte, docPath string) ([]nav.RawChapter, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to parse navigation document (%s): %w", docPath, err)
	}

	navs := doc.Find("nav")
	toc := navs.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasProperty(s.AttrOr("epub:type", ""), "toc") || s.AttrOr("role", "") == "doc-toc"
	}).First()
	if toc.Length() == 0 {
		toc = navs.First()
	}
	if toc.Length() == 0 {
		return nil, nil
	}

	base := path.Dir(docPath)
	return navList(toc.Find("ol").First(), base), nil
}

func navList(ol *goquery.Selection, base string) []nav.RawChapter {
	var out []nav.RawChapter
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		var ch nav.RawChapter
		if a := li.ChildrenFiltered("a").First(); a.Length() > 0 {
			ch.Label = collapseSpace(a.Text())
			ch.Href = resolve(base, a.AttrOr("href", ""))
		} else {
			ch.Label = collapseSpace(li.ChildrenFiltered("span").First().Text())
			// unlinked heading: take the first link below it
			if href, ok := li.Find("a[href]").First().Attr("href"); ok {
				ch.Href = resolve(base, href)
			}
		}
		ch.Subitems = navList(li.ChildrenFiltered("ol").First(), base)
		if ch.Label == "" && ch.Href == "" && len(ch.Subitems) == 0 {
			return
		}
		out = append(out, ch)
	})
	return out
}

func parseNCX(data []byte, ncxPath string) ([]nav.RawChapter, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(stripBOM(data)); err != nil {
		return nil, fmt.Errorf("unable to parse NCX (%s): %w", ncxPath, err)
	}
	navMap := doc.FindElement("//navMap")
	if navMap == nil {
		return nil, nil
	}
	return navPoints(navMap, path.Dir(ncxPath)), nil
}

func navPoints(parent *etree.Element, base string) []nav.RawChapter {
	var out []nav.RawChapter
	for _, np := range parent.SelectElements("navPoint") {
		ch := nav.RawChapter{}
		if text := np.FindElement("./navLabel/text"); text != nil {
			ch.Label = collapseSpace(text.Text())
		}
		if content := np.SelectElement("content"); content != nil {
			ch.Href = resolve(base, content.SelectAttrValue("src", ""))
		}
		ch.Subitems = navPoints(np, base)
		out = append(out, ch)
	}
	return out
}

// spineTOC stands in for a missing table of contents: one entry per linear
// spine document, labelled with its first heading.
func spineTOC(b *Book) []nav.RawChapter {
	var out []nav.RawChapter
	for _, it := range b.Linear() {
		label := ""
		if d, ok := b.Document(it.Href); ok {
			label = d.Title
		}
		if label == "" {
			label = strings.TrimSuffix(path.Base(it.Href), path.Ext(it.Href))
		}
		out = append(out, nav.RawChapter{Label: label, Href: it.Href})
	}
	return out
}
