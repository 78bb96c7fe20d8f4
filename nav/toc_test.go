package nav

import (
	"encoding/json"
	"testing"
)

func scenarioTOC() []RawChapter {
	return []RawChapter{
		{Label: "Ch1", Href: "ch1.xhtml"},
		{Label: "Ch2", Href: "ch2.xhtml#s2", Subitems: []RawChapter{
			{Label: "Ch2a", Href: "ch2.xhtml#s2a"},
		}},
	}
}

func TestOriginalHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"ch1.xhtml", "ch1.xhtml"},
		{"ch2.xhtml#s2", "ch2.xhtml"},
		{"ch2.xhtml#a#b", "ch2.xhtml"},
		{"#only", ""},
		{"", ""},
		{"dir/ch3.xhtml#", "dir/ch3.xhtml"},
	}
	for _, tt := range tests {
		if got := OriginalHref(tt.href); got != tt.want {
			t.Errorf("OriginalHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestBuildScenario(t *testing.T) {
	menu, tracker := Build(scenarioTOC())

	if menu.Len() != 3 {
		t.Fatalf("entries = %d, want 3", menu.Len())
	}
	wantKeys := []string{"ch1.xhtml", "ch2.xhtml", "ch2.xhtml"}
	wantIDs := []string{"0", "1", "1.0"}
	wantDepth := []int{0, 0, 1}
	for i, e := range menu.Entries {
		if e.Node.OriginalHref != wantKeys[i] {
			t.Errorf("entry %d key = %q, want %q", i, e.Node.OriginalHref, wantKeys[i])
		}
		if e.Node.ID != wantIDs[i] {
			t.Errorf("entry %d id = %q, want %q", i, e.Node.ID, wantIDs[i])
		}
		if e.Depth != wantDepth[i] {
			t.Errorf("entry %d depth = %d, want %d", i, e.Depth, wantDepth[i])
		}
	}
	if menu.Entries[2].Parent != 1 {
		t.Errorf("Ch2a parent = %d, want 1", menu.Entries[2].Parent)
	}
	if len(menu.Roots) != 2 || len(menu.Roots[1].Children) != 1 || menu.Roots[1].Children[0].Label != "Ch2a" {
		t.Fatalf("tree shape not preserved: %+v", menu.Roots)
	}

	key, ok := tracker.Current()
	if !ok || key != "ch1.xhtml" {
		t.Fatalf("initial key = %q (%v), want ch1.xhtml", key, ok)
	}
	active := menu.Active()
	if len(active) != 1 || active[0] != menu.Entries[0] {
		t.Fatalf("active entries = %v, want only the first", active)
	}

	target := Resolve("ch2.xhtml#s2a")
	if target.Chapter != "ch2.xhtml" || target.Anchor != "s2a" {
		t.Fatalf("Resolve = %+v", target)
	}
	tracker.Activate(target.Chapter)
	if key, _ := tracker.Current(); key != "ch2.xhtml" {
		t.Fatalf("active key = %q, want ch2.xhtml", key)
	}
	active = menu.Active()
	if len(active) != 1 || active[0].Node.Label != "Ch2" {
		t.Fatalf("active entries = %v, want Ch2 only", active)
	}
}

func TestBuildNestedEntriesNeverDefaultActive(t *testing.T) {
	menu, _ := Build([]RawChapter{
		{Label: "Part", Href: "p.xhtml", Subitems: []RawChapter{
			{Label: "A", Href: "a.xhtml"},
			{Label: "B", Href: "b.xhtml", Subitems: []RawChapter{{Label: "B1", Href: "b1.xhtml"}}},
		}},
		{Label: "Tail", Href: "t.xhtml"},
	})
	for _, e := range menu.Entries {
		if e.Depth > 0 && e.Active {
			t.Errorf("nested entry %q is active", e.Node.Label)
		}
	}
	if !menu.Entries[0].Active {
		t.Error("first top-level entry should be active")
	}
	if got := len(menu.Visible(false)); got != 2 {
		t.Errorf("top-level visible = %d, want 2", got)
	}
	if got := len(menu.Visible(true)); got != 5 {
		t.Errorf("nested visible = %d, want 5", got)
	}
}

func TestBuildWithoutDefault(t *testing.T) {
	menu, tracker := Build(scenarioTOC(), WithoutDefault())
	if len(menu.Active()) != 0 {
		t.Fatal("no entry should be active")
	}
	if _, ok := tracker.Current(); ok {
		t.Fatal("no key should be set")
	}
}

func TestBuildEmptyAndMalformed(t *testing.T) {
	menu, tracker := Build(nil)
	if menu.Len() != 0 {
		t.Fatalf("entries = %d, want 0", menu.Len())
	}
	if _, ok := tracker.Current(); ok {
		t.Fatal("empty TOC must not set an active key")
	}

	menu, _ = Build([]RawChapter{{Label: "no href"}, {Label: "ok", Href: "ok.xhtml"}})
	if menu.Entries[0].Node.OriginalHref != "" {
		t.Fatalf("missing href key = %q", menu.Entries[0].Node.OriginalHref)
	}
	if i := menu.Find(""); i != -1 {
		t.Fatalf("empty key matched entry %d", i)
	}
}

func TestRawChapterJSONShape(t *testing.T) {
	data, err := json.Marshal(scenarioTOC())
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"label":"Ch1","href":"ch1.xhtml"},{"label":"Ch2","href":"ch2.xhtml#s2","subitems":[{"label":"Ch2a","href":"ch2.xhtml#s2a"}]}]`
	if string(data) != want {
		t.Fatalf("json = %s\nwant   %s", data, want)
	}
}
