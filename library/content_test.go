package library

import (
	"reflect"
	"testing"
)

func TestParseDocumentBlocks(t *testing.T) {
	doc, err := ParseDocument([]byte(fixtureCh2))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if doc.Title != "Second Chapter" {
		t.Errorf("Title = %q", doc.Title)
	}

	want := []Block{
		{Kind: BlockHeading, Level: 2, Text: "Second Chapter", Anchors: []string{"s2"}},
		{Kind: BlockParagraph, Text: "Opening words."},
		{Kind: BlockHeading, Level: 3, Text: "Part A", Anchors: []string{"s2a"}},
		{Kind: BlockParagraph, Text: "More words."},
		{Kind: BlockParagraph, Text: "Notes follow.", Anchors: []string{"app"}},
	}
	if !reflect.DeepEqual(doc.Blocks, want) {
		t.Errorf("Blocks = %+v\nwant %+v", doc.Blocks, want)
	}
}

func TestParseDocumentStructure(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []Block
	}{
		{
			name: "whitespace collapse and breaks",
			html: `<body><p>one   two<br/>  three </p></body>`,
			want: []Block{{Kind: BlockParagraph, Text: "one two\nthree"}},
		},
		{
			name: "preformatted keeps spacing",
			html: "<body><pre>a  b\n  c</pre></body>",
			want: []Block{{Kind: BlockPre, Text: "a  b\n  c"}},
		},
		{
			name: "nested lists",
			html: `<body><ul><li>one</li><li>two<ul><li>deep</li></ul></li></ul></body>`,
			want: []Block{
				{Kind: BlockListItem, Level: 1, Text: "one"},
				{Kind: BlockListItem, Level: 1, Text: "two"},
				{Kind: BlockListItem, Level: 2, Text: "deep"},
			},
		},
		{
			name: "quote context reaches inner paragraphs",
			html: `<body><blockquote><p>quoted</p></blockquote></body>`,
			want: []Block{{Kind: BlockQuote, Text: "quoted"}},
		},
		{
			name: "rule and image alt",
			html: `<body><p>before</p><hr id="r"/><p><img alt="map" src="m.png"/> after</p></body>`,
			want: []Block{
				{Kind: BlockParagraph, Text: "before"},
				{Kind: BlockRule, Anchors: []string{"r"}},
				{Kind: BlockParagraph, Text: "[map] after"},
			},
		},
		{
			name: "scripts and styles are skipped",
			html: `<body><style>p{}</style><script>var x;</script><p>text</p></body>`,
			want: []Block{{Kind: BlockParagraph, Text: "text"}},
		},
		{
			name: "trailing anchor without text",
			html: `<body><p>text</p><div id="end"></div></body>`,
			want: []Block{
				{Kind: BlockParagraph, Text: "text"},
				{Kind: BlockParagraph, Anchors: []string{"end"}},
			},
		},
		{
			name: "inline anchor by name",
			html: `<body><p>see <a name="n1">here</a></p></body>`,
			want: []Block{{Kind: BlockParagraph, Text: "see here", Anchors: []string{"n1"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.html))
			if err != nil {
				t.Fatalf("ParseDocument() error = %v", err)
			}
			if !reflect.DeepEqual(doc.Blocks, tt.want) {
				t.Errorf("Blocks = %+v\nwant %+v", doc.Blocks, tt.want)
			}
		})
	}
}

func TestParseDocumentTitleFallback(t *testing.T) {
	doc, err := ParseDocument([]byte(`<html><head><title> Only  Title </title></head><body><p>x</p></body></html>`))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if doc.Title != "Only Title" {
		t.Errorf("Title = %q, want %q", doc.Title, "Only Title")
	}
}

func TestParseDocumentDeclaredEncoding(t *testing.T) {
	// "café" in ISO-8859-1
	data := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><html><body><p>caf`), 0xE9, '<', '/', 'p', '>')
	data = append(data, []byte(`</body></html>`)...)
	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Text != "café" {
		t.Errorf("Blocks = %+v, want café", doc.Blocks)
	}
}
