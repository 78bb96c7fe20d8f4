package nav

// Tracker holds the navigation state: the active chapter key and the one
// menu entry marked for it. The menu is a projection of the tracker and is
// never read back to find out what is active.
type Tracker struct {
	menu   *Menu
	key    string
	set    bool
	marked int
}

func NewTracker(menu *Menu) *Tracker {
	return &Tracker{menu: menu, marked: -1}
}

// Activate makes key the active chapter. The previous marker is cleared
// first; a key without a matching entry leaves nothing marked.
func (t *Tracker) Activate(key string) {
	if t.set && t.key == key && t.marked >= 0 {
		return
	}

	if t.marked >= 0 && t.marked < t.menu.Len() {
		t.menu.Entries[t.marked].Active = false
	}
	t.marked = -1

	t.key = key
	t.set = true

	if i := t.menu.Find(key); i >= 0 {
		t.menu.Entries[i].Active = true
		t.marked = i
	}
}

// Current returns the active key, if any chapter has been resolved yet.
func (t *Tracker) Current() (string, bool) {
	return t.key, t.set
}

// Marked returns the index of the marked entry, or -1.
func (t *Tracker) Marked() int { return t.marked }

// Reset forgets the active chapter.
func (t *Tracker) Reset() {
	if t.marked >= 0 && t.marked < t.menu.Len() {
		t.menu.Entries[t.marked].Active = false
	}
	t.marked = -1
	t.key = ""
	t.set = false
}
