package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"epub_reader/nav"
)

const container = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const opf = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Small</dc:title></metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="c1"/></spine>
</package>`

const navDoc = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body><nav epub:type="toc"><ol><li><a href="ch1.xhtml">One</a></li></ol></nav></body>
</html>`

const chapter = `<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>One</h1><p>Text.</p></body></html>`

func writeBook(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "small.epub")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("application/epub+zip"))
	for _, e := range []struct{ name, body string }{
		{"META-INF/container.xml", container},
		{"content.opf", opf},
		{"nav.xhtml", navDoc},
		{"ch1.xhtml", chapter},
	} {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(e.body))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestTOCCommandIndentsJSON(t *testing.T) {
	var out bytes.Buffer
	tocCmd.SetOut(&out)
	defer tocCmd.SetOut(nil)

	if err := tocCmd.RunE(tocCmd, []string{writeBook(t)}); err != nil {
		t.Fatalf("toc: %v", err)
	}
	if !strings.Contains(out.String(), "\n  {\n    \"label\": \"One\",") {
		t.Errorf("output is not indented by two spaces:\n%s", out.String())
	}

	var toc []nav.RawChapter
	if err := json.Unmarshal(out.Bytes(), &toc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(toc) != 1 || toc[0].Label != "One" {
		t.Errorf("toc = %+v", toc)
	}
}
