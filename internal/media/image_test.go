package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a gradient test image and saves it to the given path
func createTestImage(t *testing.T, path string, width, height int, format string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image file: %v", err)
	}
	defer f.Close()

	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(f, img)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}

	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func TestLoadImageConstrained(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name         string
		width        int
		height       int
		maxDimension int
		maxPixels    int
		wantWidth    int
		wantHeight   int
	}{
		{
			name: "within limits", width: 300, height: 200,
			maxDimension: 1000, maxPixels: 1_000_000,
			wantWidth: 300, wantHeight: 200,
		},
		{
			name: "wide over dimension", width: 800, height: 400,
			maxDimension: 400, maxPixels: 1_000_000,
			wantWidth: 400, wantHeight: 200,
		},
		{
			name: "tall over dimension", width: 300, height: 600,
			maxDimension: 300, maxPixels: 1_000_000,
			wantWidth: 150, wantHeight: 300,
		},
		{
			name: "over pixel budget", width: 400, height: 400,
			maxDimension: 1000, maxPixels: 40_000,
			wantWidth: 200, wantHeight: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(tmpDir, tt.name+".png")
			createTestImage(t, filename, tt.width, tt.height, "png")

			img, err := LoadImageConstrained(filename, tt.maxDimension, tt.maxPixels)
			if err != nil {
				t.Fatalf("LoadImageConstrained failed: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
				t.Errorf("bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

// writeRotatedJPEG writes a width x height JPEG whose EXIF orientation
// says to rotate it 90 degrees clockwise for display.
func writeRotatedJPEG(t *testing.T, path string, width, height int) {
	t.Helper()

	var body bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := jpeg.Encode(&body, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	exif := []byte("Exif\x00\x00" +
		"MM\x00\x2a\x00\x00\x00\x08" + // big-endian TIFF header, IFD at 8
		"\x00\x01" + // one entry
		"\x01\x12\x00\x03\x00\x00\x00\x01\x00\x06\x00\x00" + // Orientation = 6
		"\x00\x00\x00\x00")
	segment := []byte{0xFF, 0xE1, byte((len(exif) + 2) >> 8), byte(len(exif) + 2)}

	data := body.Bytes()
	out := append([]byte{}, data[:2]...) // SOI
	out = append(out, segment...)
	out = append(out, exif...)
	out = append(out, data[2:]...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("Failed to write JPEG: %v", err)
	}
}

func TestLoadImageConstrainedKeepsOrientedAspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portrait.jpg")
	writeRotatedJPEG(t, path, 400, 200)

	img, err := LoadImageConstrained(path, 100, MaxImagePixels)
	if err != nil {
		t.Fatalf("LoadImageConstrained failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 100 {
		t.Errorf("bounds = %dx%d, want 50x100 for a rotated 400x200 source", b.Dx(), b.Dy())
	}

	unconstrained, err := LoadImageConstrained(path, MaxImageDimension, MaxImagePixels)
	if err != nil {
		t.Fatalf("LoadImageConstrained failed: %v", err)
	}
	if b := unconstrained.Bounds(); b.Dx() != 200 || b.Dy() != 400 {
		t.Errorf("bounds = %dx%d, want 200x400 after orientation", b.Dx(), b.Dy())
	}
}

func TestLoadImageConstrainedErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadImageConstrained(filepath.Join(tmpDir, "missing.png"), MaxImageDimension, MaxImagePixels); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(tmpDir, "bad.png")
	if err := os.WriteFile(bad, []byte{0x89, 'P', 'N', 'G', 0, 0}, 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadImageConstrained(bad, MaxImageDimension, MaxImagePixels); err == nil {
		t.Error("Expected error for truncated PNG")
	}
}

func TestConstrainNeverReturnsZero(t *testing.T) {
	w, h, ok := constrain(100000, 1, 4096, MaxImagePixels)
	if !ok {
		t.Fatal("constrain() = not constrained, want constrained")
	}
	if w != 4096 || h != 1 {
		t.Errorf("constrain() = %dx%d, want 4096x1", w, h)
	}
}

func TestDetectFormat(t *testing.T) {
	tmpDir := t.TempDir()

	pngPath := filepath.Join(tmpDir, "a.png")
	createTestImage(t, pngPath, 4, 4, "png")
	jpgPath := filepath.Join(tmpDir, "a.jpg")
	createTestImage(t, jpgPath, 4, 4, "jpeg")

	write := func(name string, data []byte) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		path string
		want string
	}{
		{pngPath, "png"},
		{jpgPath, "jpeg"},
		{write("a.gif", []byte("GIF89a")), "gif"},
		{write("a.webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")), "webp"},
		{write("a.bmp", []byte("BM\x00\x00")), "bmp"},
		{write("a.tif", []byte("II*\x00")), "tiff"},
		{write("a.heic", []byte("\x00\x00\x00\x18ftypheic")), "heif"},
		{write("a.txt", []byte("hello")), "unknown"},
		{write("empty", nil), "unknown"},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
