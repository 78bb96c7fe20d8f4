package library

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"epub_reader/utils"
)

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockPre
	BlockQuote
	BlockListItem
	BlockRule
)

// Block is a width independent run of text. Anchors are the element ids
// that start inside the block.
type Block struct {
	Kind    BlockKind
	Level   int // heading level, list nesting
	Text    string
	Anchors []string
}

// Document is a spine document reduced to text blocks.
type Document struct {
	Title  string
	Blocks []Block
}

var spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

var blockTags = map[string]BlockKind{
	"p": BlockParagraph, "div": BlockParagraph, "section": BlockParagraph, "article": BlockParagraph,
	"header": BlockParagraph, "footer": BlockParagraph, "aside": BlockParagraph, "nav": BlockParagraph,
	"figure": BlockParagraph, "figcaption": BlockParagraph, "table": BlockParagraph, "tr": BlockParagraph,
	"dt": BlockParagraph, "dd": BlockParagraph, "ul": BlockParagraph, "ol": BlockParagraph, "dl": BlockParagraph,
	"h1": BlockHeading, "h2": BlockHeading, "h3": BlockHeading, "h4": BlockHeading, "h5": BlockHeading, "h6": BlockHeading,
	"pre": BlockPre, "blockquote": BlockQuote, "li": BlockListItem,
}

var skipTags = map[string]bool{"script": true, "style": true, "head": true, "svg": true, "math": true}

// ParseDocument reduces an XHTML content document to blocks.
func ParseDocument(data []byte) (*Document, error) {
	text, err := utils.DecodeToUTF8(data)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("unable to parse content document: %w", err)
	}

	w := &walker{}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}
	for _, n := range body.Nodes {
		w.walkChildren(n)
	}
	w.flush()
	if len(w.anchors) > 0 {
		w.blocks = append(w.blocks, Block{Kind: BlockParagraph, Anchors: w.anchors})
	}

	out := &Document{Blocks: w.blocks}
	for _, b := range w.blocks {
		if b.Kind == BlockHeading && b.Text != "" {
			out.Title = strings.ReplaceAll(b.Text, "\n", " ")
			break
		}
	}
	if out.Title == "" {
		out.Title = collapseSpace(doc.Find("head title").First().Text())
	}
	return out, nil
}

type frame struct {
	kind  BlockKind
	level int
}

type walker struct {
	blocks  []Block
	anchors []string
	text    strings.Builder
	stack   []frame
	pre     int
	list    int
}

func (w *walker) current() frame {
	if len(w.stack) == 0 {
		return frame{kind: BlockParagraph}
	}
	return w.stack[len(w.stack)-1]
}

func (w *walker) walkChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if w.pre > 0 {
			w.text.WriteString(n.Data)
		} else {
			w.text.WriteString(spaceRun.ReplaceAllString(n.Data, " "))
		}
		return
	case html.ElementNode:
	default:
		w.walkChildren(n)
		return
	}

	tag := strings.ToLower(n.Data)
	if skipTags[tag] {
		return
	}
	kind, block := blockTags[tag]
	if block || tag == "hr" {
		w.flush()
	}
	for _, a := range n.Attr {
		if (a.Key == "id" || (a.Key == "name" && tag == "a")) && a.Val != "" {
			w.anchors = append(w.anchors, a.Val)
		}
	}

	switch tag {
	case "br":
		w.text.WriteString("\n")
		return
	case "hr":
		w.blocks = append(w.blocks, Block{Kind: BlockRule, Anchors: w.takeAnchors()})
		return
	case "img", "image":
		if alt := attr(n, "alt"); alt != "" {
			w.text.WriteString("[" + alt + "]")
		}
		return
	case "td", "th":
		w.text.WriteString(" ")
		w.walkChildren(n)
		w.text.WriteString(" ")
		return
	}

	if !block {
		w.walkChildren(n)
		return
	}

	f := frame{kind: kind}
	switch kind {
	case BlockHeading:
		f.level = int(tag[1] - '0')
	case BlockPre:
		w.pre++
	case BlockListItem:
		f.level = w.list
	}
	if tag == "ul" || tag == "ol" {
		w.list++
	}
	if kind == BlockParagraph && len(w.stack) > 0 {
		// plain containers inherit quoting and list context
		if outer := w.current(); outer.kind == BlockQuote || outer.kind == BlockListItem {
			f = outer
		}
	}

	w.stack = append(w.stack, f)
	w.walkChildren(n)
	w.flush()
	w.stack = w.stack[:len(w.stack)-1]

	if kind == BlockPre {
		w.pre--
	}
	if tag == "ul" || tag == "ol" {
		w.list--
	}
}

func (w *walker) takeAnchors() []string {
	a := w.anchors
	w.anchors = nil
	return a
}

// flush closes the pending text as a block of the current kind. Anchors
// seen without any text stay pending for the next block.
func (w *walker) flush() {
	raw := w.text.String()
	w.text.Reset()

	f := w.current()
	var text string
	if f.kind == BlockPre {
		text = strings.Trim(raw, "\n")
	} else {
		lines := strings.Split(raw, "\n")
		kept := lines[:0]
		for _, l := range lines {
			if l = strings.TrimSpace(spaceRun.ReplaceAllString(l, " ")); l != "" {
				kept = append(kept, l)
			}
		}
		text = strings.Join(kept, "\n")
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	w.blocks = append(w.blocks, Block{
		Kind:    f.kind,
		Level:   f.level,
		Text:    text,
		Anchors: w.takeAnchors(),
	})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
