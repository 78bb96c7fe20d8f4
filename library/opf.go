package library

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
)

const containerPath = "META-INF/container.xml"

var errMissingEntry = errors.New("no such entry in archive")

type reader func(name string) ([]byte, error)

type manifestItem struct {
	id         string
	href       string
	mediaType  string
	properties string
}

// opfPackage is what the reader needs from the package document.
type opfPackage struct {
	path     string
	title    string
	author   string
	language string
	manifest map[string]manifestItem
	spine    []SpineItem
	ncx      string // archive path of the EPUB 2 NCX, if any
	navDoc   string // archive path of the EPUB 3 navigation document, if any
}

func readContainer(read reader) (string, error) {
	data, err := read(containerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoPackage, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("unable to parse %s: %w", containerPath, err)
	}
	for _, rf := range doc.FindElements("//rootfile") {
		full := rf.SelectAttrValue("full-path", "")
		if full == "" {
			continue
		}
		mt := rf.SelectAttrValue("media-type", "")
		if mt == "" || mt == "application/oebps-package+xml" {
			return unescape(full), nil
		}
	}
	return "", ErrNoPackage
}

func parsePackage(data []byte, opfPath string) (*opfPackage, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(stripBOM(data)); err != nil {
		return nil, fmt.Errorf("unable to parse package document (%s): %w", opfPath, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "package" {
		return nil, fmt.Errorf("%s: %w", opfPath, ErrNoPackage)
	}

	pkg := &opfPackage{path: opfPath, manifest: make(map[string]manifestItem)}
	base := path.Dir(opfPath)

	if md := root.FindElement("./metadata"); md != nil {
		pkg.title = firstText(md, "title")
		pkg.author = firstText(md, "creator")
		pkg.language = firstText(md, "language")
	}

	if mf := root.FindElement("./manifest"); mf != nil {
		for _, el := range mf.SelectElements("item") {
			it := manifestItem{
				id:         el.SelectAttrValue("id", ""),
				href:       resolve(base, el.SelectAttrValue("href", "")),
				mediaType:  el.SelectAttrValue("media-type", ""),
				properties: el.SelectAttrValue("properties", ""),
			}
			if it.id == "" {
				continue
			}
			pkg.manifest[it.id] = it
			if hasProperty(it.properties, "nav") {
				pkg.navDoc = it.href
			}
		}
	}

	if sp := root.FindElement("./spine"); sp != nil {
		if id := sp.SelectAttrValue("toc", ""); id != "" {
			if it, ok := pkg.manifest[id]; ok {
				pkg.ncx = it.href
			}
		}
		for _, ref := range sp.SelectElements("itemref") {
			it, ok := pkg.manifest[ref.SelectAttrValue("idref", "")]
			if !ok {
				continue
			}
			pkg.spine = append(pkg.spine, SpineItem{
				ID:     it.id,
				Href:   it.href,
				Linear: ref.SelectAttrValue("linear", "yes") != "no",
			})
		}
	}

	if pkg.ncx == "" {
		for _, it := range pkg.manifest {
			if it.mediaType == "application/x-dtbncx+xml" {
				pkg.ncx = it.href
				break
			}
		}
	}
	return pkg, nil
}

func firstText(parent *etree.Element, tag string) string {
	for _, el := range parent.ChildElements() {
		if el.Tag == tag {
			if s := collapseSpace(el.Text()); s != "" {
				return s
			}
		}
	}
	return ""
}

func hasProperty(props, name string) bool {
	for _, p := range strings.Fields(props) {
		if p == name {
			return true
		}
	}
	return false
}

// resolve turns an href relative to base into an archive path, keeping any
// fragment. An href that is only a fragment stays relative to base's
// document and is returned unchanged.
func resolve(base, href string) string {
	href = strings.TrimSpace(href)
	p, frag, hasFrag := strings.Cut(href, "#")
	if p == "" {
		return href
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		return href
	}
	p = path.Clean(path.Join(base, unescape(p)))
	p = strings.TrimPrefix(p, "./")
	if hasFrag {
		return p + "#" + frag
	}
	return p
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
