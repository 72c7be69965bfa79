package thumbnail

import (
	"image"
	"path/filepath"
	"time"

	"pixsort/internal/cache"
	"pixsort/internal/filesystem"
	"pixsort/internal/logging"
	"pixsort/internal/media"
	"pixsort/internal/metrics"

	"github.com/disintegration/imaging"
)

// Cache is the subset of *cache.Store the producer needs.
type Cache interface {
	Get(id cache.Identity, size int) (image.Image, cache.Lookup)
	Put(id cache.Identity, size int, img image.Image) error
}

// Producer builds preview sets. It holds no per-call state and is safe for
// concurrent use by the worker pool.
type Producer struct {
	store    Cache
	sizes    []int
	selected int
	decode   func(path string) (image.Image, error)
}

// NewProducer returns a producer for the given sizes. A nil store
// disables caching.
func NewProducer(store Cache, sizes []int, selected int) *Producer {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	return &Producer{
		store:    store,
		sizes:    append([]int(nil), sizes...),
		selected: clampSelected(selected, len(sizes)),
		decode:   decodeSource,
	}
}

// Sizes returns a copy of the preview sizes.
func (p *Producer) Sizes() []int {
	return append([]int(nil), p.sizes...)
}

// Selected returns the default selected index of produced sets.
func (p *Producer) Selected() int {
	return p.selected
}

// Placeholder returns the failed set this producer would build for path.
func (p *Producer) Placeholder(path string) Set {
	return PlaceholderSet(path, p.sizes, p.selected)
}

// Produce returns one preview per size for path. It never fails: problems
// with the cache only cost a re-render, and a source that cannot be
// decoded yields a placeholder set.
func (p *Producer) Produce(path string) Set {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	set := Set{
		Path:     path,
		Name:     filepath.Base(path),
		Previews: make([]image.Image, len(p.sizes)),
		Sources:  make([]Source, len(p.sizes)),
		Selected: p.selected,
	}

	var id cache.Identity
	cacheable := p.store != nil
	if cacheable {
		info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig(filesystem.VolumeSource))
		if err != nil {
			logging.Debug("Thumbnail: stat %s failed, caching disabled for this file: %v", path, err)
			cacheable = false
		} else {
			id = cache.IdentityFromInfo(path, info)
		}
	}

	var src image.Image
	for i, size := range p.sizes {
		if cacheable {
			if img, result := p.store.Get(id, size); result.Found() {
				set.Previews[i] = img
				set.Sources[i] = SourceCache
				continue
			}
		}

		if src == nil {
			var err error
			if src, err = p.timedDecode(path); err != nil {
				if logging.IsDebugEnabled() {
					logging.Debug("Thumbnail: decode %s failed (%s): %v", path, sniff(path), err)
				}
				return p.finish(p.Placeholder(path))
			}
		}

		start := time.Now()
		thumb := imaging.Fit(src, size, size, imaging.Lanczos)
		metrics.ThumbnailPhaseDuration.WithLabelValues("resize").Observe(time.Since(start).Seconds())

		set.Previews[i] = thumb
		set.Sources[i] = SourceRendered
		if cacheable {
			_ = p.store.Put(id, size, thumb)
		}
	}

	return p.finish(set)
}

func (p *Producer) timedDecode(path string) (image.Image, error) {
	start := time.Now()
	img, err := p.decode(path)
	metrics.ThumbnailPhaseDuration.WithLabelValues("decode").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DecodesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DecodesTotal.WithLabelValues("success").Inc()
	return img, nil
}

func (p *Producer) finish(set Set) Set {
	for _, s := range set.Sources {
		metrics.PreviewsTotal.WithLabelValues(s.String()).Inc()
	}
	return set
}

func decodeSource(path string) (image.Image, error) {
	return media.LoadImageConstrained(path, media.MaxImageDimension, media.MaxImagePixels)
}

func sniff(path string) string {
	format, err := media.DetectFormat(path)
	if err != nil {
		return "unreadable"
	}
	return format
}
