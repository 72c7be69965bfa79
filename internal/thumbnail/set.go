package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultSizes are the preview bounding boxes, smallest first.
var DefaultSizes = []int{80, 150, 250}

// DefaultSelected indexes DefaultSizes (150px).
const DefaultSelected = 1

// PlaceholderColor fills previews of files that could not be decoded.
var PlaceholderColor = color.NRGBA{R: 80, G: 80, B: 80, A: 255}

// Source records where a preview came from.
type Source int

const (
	SourcePlaceholder Source = iota
	SourceCache
	SourceRendered
)

func (s Source) String() string {
	switch s {
	case SourcePlaceholder:
		return "placeholder"
	case SourceCache:
		return "cache"
	case SourceRendered:
		return "rendered"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Set holds the previews of one source file. Previews and Sources are
// indexed like the producer's sizes.
type Set struct {
	Path     string
	Name     string
	Previews []image.Image
	Sources  []Source
	Selected int
	// Failed is set when the source could not be decoded and every preview
	// is a placeholder.
	Failed bool
}

// Len returns the number of previews.
func (s Set) Len() int {
	return len(s.Previews)
}

// Current returns the selected preview, or nil for an empty set.
func (s Set) Current() image.Image {
	if s.Selected < 0 || s.Selected >= len(s.Previews) {
		return nil
	}
	return s.Previews[s.Selected]
}

// Select changes the selected preview. Out of range indices are ignored
// and reported as false.
func (s *Set) Select(i int) bool {
	if i < 0 || i >= len(s.Previews) {
		return false
	}
	s.Selected = i
	return true
}

// Placeholder returns a size×size image filled with PlaceholderColor.
func Placeholder(size int) image.Image {
	return imaging.New(size, size, PlaceholderColor)
}

// PlaceholderSet builds a failed set with one placeholder per size.
func PlaceholderSet(path string, sizes []int, selected int) Set {
	set := Set{
		Path:     path,
		Name:     filepath.Base(path),
		Previews: make([]image.Image, len(sizes)),
		Sources:  make([]Source, len(sizes)),
		Selected: clampSelected(selected, len(sizes)),
		Failed:   true,
	}
	for i, size := range sizes {
		set.Previews[i] = Placeholder(size)
		set.Sources[i] = SourcePlaceholder
	}
	return set
}

func clampSelected(selected, n int) int {
	if selected < 0 || selected >= n {
		return 0
	}
	return selected
}
