package cache

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pixsort/internal/filesystem"
	"pixsort/internal/logging"
	"pixsort/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// EntryExt is the extension of every cache entry.
	EntryExt = ".jpg"

	// JPEGQuality is the encode quality of cached thumbnails.
	JPEGQuality = 90

	// TempPrefix starts the name of a Put that has not been renamed yet.
	TempPrefix = ".put-"
)

// Background is composited under transparent pixels before encoding; the
// JPEG entries carry no alpha channel.
var Background = color.NRGBA{R: 43, G: 43, B: 43, A: 255}

// Lookup is the outcome of a cache read.
type Lookup int

const (
	// LookupMiss means no entry exists for the key.
	LookupMiss Lookup = iota
	// LookupHit means the entry was read and decoded.
	LookupHit
	// LookupError means an entry exists but could not be read or decoded.
	LookupError
)

// Found reports whether the lookup produced an image. Miss and error are
// indistinguishable here on purpose: both mean "render it".
func (l Lookup) Found() bool {
	return l == LookupHit
}

func (l Lookup) String() string {
	switch l {
	case LookupHit:
		return "hit"
	case LookupMiss:
		return "miss"
	case LookupError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// Entry describes one cache file on disk.
type Entry struct {
	Name     string
	Path     string
	Identity Identity
	Size     int // target bounding box in pixels
	Bytes    int64
	ModTime  time.Time
}

// Store is a flat directory of encoded thumbnails, one file per
// (identity, size) pair. It has no in-memory state, so concurrent workers
// share it without locking; two writers of the same key just race to an
// identical file.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating the directory if needed.
// A directory that cannot be created only means every lookup misses.
func NewStore(dir string) *Store {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Warn("Thumbnail cache: failed to create %s: %v", dir, err)
	}
	return &Store{dir: dir}
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// EntryName returns the file name for (id, size).
func EntryName(id Identity, size int) string {
	return string(id) + "_" + strconv.Itoa(size) + EntryExt
}

// ParseEntryName recovers identity and size from a cache file name.
func ParseEntryName(name string) (Identity, int, bool) {
	base, ok := strings.CutSuffix(name, EntryExt)
	if !ok {
		return "", 0, false
	}
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return "", 0, false
	}
	id := Identity(base[:i])
	size, err := strconv.Atoi(base[i+1:])
	if err != nil || size <= 0 || !id.Valid() {
		return "", 0, false
	}
	return id, size, true
}

// Path returns the absolute path of the entry for (id, size).
func (s *Store) Path(id Identity, size int) string {
	return filepath.Join(s.dir, EntryName(id, size))
}

// Get reads the entry for (id, size). Unreadable or corrupt entries are
// reported as LookupError and otherwise treated like a miss.
func (s *Store) Get(id Identity, size int) (image.Image, Lookup) {
	start := time.Now()
	img, result := s.get(id, size)
	metrics.CacheLookupsTotal.WithLabelValues(result.String()).Inc()
	metrics.ThumbnailPhaseDuration.WithLabelValues("cache_read").Observe(time.Since(start).Seconds())
	return img, result
}

func (s *Store) get(id Identity, size int) (image.Image, Lookup) {
	path := s.Path(id, size)
	img, err := imaging.Open(path)
	if err == nil {
		return img, LookupHit
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, LookupMiss
	}
	logging.Debug("Thumbnail cache: ignoring unreadable entry %s: %v", path, err)
	return nil, LookupError
}

// Put encodes img as JPEG and stores it under (id, size). The write goes
// to a temporary file that is renamed into place, so readers see either
// the old entry, the new one, or nothing. Callers treat errors as a no-op;
// caching never affects what is displayed.
func (s *Store) Put(id Identity, size int, img image.Image) error {
	start := time.Now()
	err := s.put(id, size, img)
	status := "success"
	if err != nil {
		status = "error"
		logging.Debug("Thumbnail cache: write %s failed: %v", EntryName(id, size), err)
	}
	metrics.CacheWritesTotal.WithLabelValues(status).Inc()
	metrics.ThumbnailPhaseDuration.WithLabelValues("cache_write").Observe(time.Since(start).Seconds())
	return err
}

func (s *Store) put(id Identity, size int, img image.Image) error {
	tmp, err := os.CreateTemp(s.dir, TempPrefix+"*"+EntryExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if err := imaging.Encode(tmp, Flatten(img), imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(id, size)); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Flatten composites img over Background when it may carry transparency.
// Opaque images are returned unchanged.
func Flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), Background)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// Entries lists every well-formed cache entry. Foreign files and in-flight
// temporary files are skipped.
func (s *Store) Entries() ([]Entry, error) {
	return listEntries(s.dir)
}

// Stats returns the total size and count of cache entries.
func (s *Store) Stats() (int64, int, error) {
	entries, err := s.Entries()
	if err != nil {
		return 0, 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Bytes
	}
	return total, len(entries), nil
}

func listEntries(dir string) ([]Entry, error) {
	dirEntries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig(filesystem.VolumeCache))
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		id, size, ok := ParseEntryName(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		entries = append(entries, Entry{
			Name:     de.Name(),
			Path:     filepath.Join(dir, de.Name()),
			Identity: id,
			Size:     size,
			Bytes:    info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	return entries, nil
}

// listStaleTemps returns Put temp files last modified before cutoff. A
// younger temp file may still belong to a running Put.
func listStaleTemps(dir string, cutoff time.Time) ([]Entry, error) {
	dirEntries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig(filesystem.VolumeCache))
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	var stale []Entry
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || !strings.HasPrefix(de.Name(), TempPrefix) {
			continue
		}
		info, err := de.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		stale = append(stale, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(dir, de.Name()),
			Bytes:   info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return stale, nil
}
