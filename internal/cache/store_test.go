package cache

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func testIdentity(name string) Identity {
	return DeriveIdentity("/pics/"+name, time.Unix(1700000000, 0), 1234)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	id := testIdentity("a.png")

	thumb := imaging.Fit(gradient(400, 200), 150, 150, imaging.Lanczos)
	if err := store.Put(id, 150, thumb); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, result := store.Get(id, 150)
	if result != LookupHit {
		t.Fatalf("Get() result = %v, want hit", result)
	}
	if !result.Found() {
		t.Error("LookupHit.Found() = false")
	}
	if b := got.Bounds(); b.Dx() != 150 || b.Dy() != 75 {
		t.Errorf("round-trip bounds = %dx%d, want 150x75", b.Dx(), b.Dy())
	}

	if _, err := os.Stat(filepath.Join(store.Dir(), string(id)+"_150.jpg")); err != nil {
		t.Errorf("entry file not at expected name: %v", err)
	}
}

func TestStoreGetMiss(t *testing.T) {
	store := NewStore(t.TempDir())

	img, result := store.Get(testIdentity("missing.png"), 80)
	if result != LookupMiss {
		t.Errorf("Get() result = %v, want miss", result)
	}
	if img != nil {
		t.Error("Get() returned an image on miss")
	}
	if result.Found() {
		t.Error("LookupMiss.Found() = true")
	}
}

func TestStoreGetCorruptEntry(t *testing.T) {
	store := NewStore(t.TempDir())
	id := testIdentity("corrupt.png")

	if err := os.WriteFile(store.Path(id, 80), []byte("not a jpeg"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt entry: %v", err)
	}

	img, result := store.Get(id, 80)
	if result != LookupError {
		t.Errorf("Get() result = %v, want error", result)
	}
	if img != nil || result.Found() {
		t.Error("corrupt entry must behave like a miss")
	}
}

func TestStorePutOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())
	id := testIdentity("a.png")

	if err := store.Put(id, 80, gradient(80, 40)); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := store.Put(id, 80, gradient(40, 80)); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	got, result := store.Get(id, 80)
	if result != LookupHit {
		t.Fatalf("Get() result = %v, want hit", result)
	}
	if b := got.Bounds(); b.Dx() != 40 || b.Dy() != 80 {
		t.Errorf("bounds = %dx%d, want the rewritten 40x80", b.Dx(), b.Dy())
	}

	// No temp files left behind
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".put-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestStorePutFailureIsReported(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "file-not-dir")
	if err := os.WriteFile(dir, nil, 0o644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}
	store := &Store{dir: dir}

	if err := store.Put(testIdentity("a.png"), 80, gradient(10, 10)); err == nil {
		t.Error("Put() into a non-directory succeeded, want error")
	}
	if _, result := store.Get(testIdentity("a.png"), 80); result.Found() {
		t.Error("Get() after failed Put() found an entry")
	}
}

func TestStorePutReadOnlyDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	defer os.Chmod(dir, 0o755)

	if err := store.Put(testIdentity("a.png"), 80, gradient(10, 10)); err == nil {
		t.Error("Put() into read-only dir succeeded, want error")
	}
}

func TestFlattenTransparency(t *testing.T) {
	transparent := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	flat := Flatten(transparent)

	r, g, b, a := flat.At(1, 1).RGBA()
	if a != 0xffff {
		t.Errorf("flattened alpha = %d, want opaque", a)
	}
	if r>>8 != 43 || g>>8 != 43 || b>>8 != 43 {
		t.Errorf("flattened colour = (%d,%d,%d), want background (43,43,43)", r>>8, g>>8, b>>8)
	}

	opaque := gradient(4, 4)
	if Flatten(opaque) != image.Image(opaque) {
		t.Error("Flatten copied an opaque image")
	}
}

func TestStoreTransparentRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	id := testIdentity("alpha.png")

	if err := store.Put(id, 80, image.NewNRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, result := store.Get(id, 80)
	if result != LookupHit {
		t.Fatalf("Get() result = %v, want hit", result)
	}

	r, g, b, _ := got.At(4, 4).RGBA()
	for _, c := range []uint32{r >> 8, g >> 8, b >> 8} {
		// JPEG is lossy; allow a little drift around 43
		if c < 38 || c > 48 {
			t.Errorf("pixel channel = %d, want ~43", c)
		}
	}
}

func TestParseEntryName(t *testing.T) {
	id := testIdentity("a.png")

	tests := []struct {
		name     string
		wantOK   bool
		wantSize int
	}{
		{EntryName(id, 150), true, 150},
		{EntryName(id, 80), true, 80},
		{string(id) + "_0.jpg", false, 0},
		{string(id) + "_big.jpg", false, 0},
		{string(id) + "_150.png", false, 0},
		{"short_150.jpg", false, 0},
		{".put-123.jpg", false, 0},
		{LockName, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, size, ok := ParseEntryName(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ParseEntryName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if gotID != id || size != tt.wantSize {
				t.Errorf("ParseEntryName(%q) = (%s, %d), want (%s, %d)", tt.name, gotID, size, id, tt.wantSize)
			}
		})
	}
}

func TestStoreEntriesAndStats(t *testing.T) {
	store := NewStore(t.TempDir())

	for i, size := range []int{80, 150, 250} {
		if err := store.Put(testIdentity("a.png"), size, gradient(10+i, 10)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	// Foreign files are ignored
	if err := os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := store.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", len(entries))
	}

	var want int64
	for _, e := range entries {
		if e.Identity != testIdentity("a.png") {
			t.Errorf("entry %s has identity %s", e.Name, e.Identity)
		}
		want += e.Bytes
	}

	total, count, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if total != want || count != 3 {
		t.Errorf("Stats() = (%d, %d), want (%d, 3)", total, count, want)
	}
}

func TestLookupString(t *testing.T) {
	tests := map[Lookup]string{
		LookupHit:   "hit",
		LookupMiss:  "miss",
		LookupError: "error",
		Lookup(9):   "unknown(9)",
	}
	for l, want := range tests {
		if got := l.String(); got != want {
			t.Errorf("Lookup(%d).String() = %q, want %q", int(l), got, want)
		}
	}
}
