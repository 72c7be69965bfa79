package tui

import (
	"pixsort/internal/thumbnail"
)

// Item is the display handle of one image: its thumbnail set plus the
// rendered text of the preview sizes shown so far.
type Item struct {
	Path   string
	Name   string
	Failed bool

	set      thumbnail.Set
	rendered []string
}

// NewItem renders the selected preview of set. It runs on the bubbletea
// goroutine, one call per harvested result; other sizes are rendered the
// first time they are shown.
func NewItem(set thumbnail.Set) *Item {
	item := &Item{
		Path:     set.Path,
		Name:     set.Name,
		Failed:   set.Failed,
		set:      set,
		rendered: make([]string, set.Len()),
	}
	item.render(set.Selected)
	return item
}

func (it *Item) render(i int) string {
	if i < 0 || i >= len(it.rendered) {
		return ""
	}
	if it.rendered[i] == "" {
		preview := it.set.Previews[i]
		if preview == nil {
			return ""
		}
		b := preview.Bounds()
		it.rendered[i] = RenderHalfBlocks(preview, Columns(max(b.Dx(), b.Dy())))
	}
	return it.rendered[i]
}

// Select switches the visible preview without touching the source file.
func (it *Item) Select(i int) bool {
	return it.set.Select(i)
}

// Selected returns the visible preview index.
func (it *Item) Selected() int {
	return it.set.Selected
}

// Set returns the underlying thumbnail set.
func (it *Item) Set() thumbnail.Set {
	return it.set
}

// Preview returns the rendered text of the visible preview, drawing it on
// first use.
func (it *Item) Preview() string {
	return it.render(it.set.Selected)
}
