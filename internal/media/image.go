package media

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"pixsort/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// MaxImageDimension is the maximum width or height we'll process
	// Images larger than this will be downscaled first
	MaxImageDimension = 4096

	// MaxImagePixels is the maximum total pixels (width * height) we'll process
	MaxImagePixels = 20_000_000 // ~20MP, uses ~80MB in RGBA
)

// LoadImageConstrained loads an image with its EXIF orientation applied,
// downscaling it if it exceeds size limits. The limits apply to the
// oriented image, so a rotated photo keeps its aspect ratio.
func LoadImageConstrained(path string, maxDimension, maxPixels int) (image.Image, error) {
	img, err := openOriented(path)
	if err != nil {
		return nil, err
	}
	return constrainImage(img, maxDimension, maxPixels), nil
}

func constrainImage(img image.Image, maxDimension, maxPixels int) image.Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	targetWidth, targetHeight, constrained := constrain(width, height, maxDimension, maxPixels)
	if !constrained {
		return img
	}

	logging.Info("Constraining large image from %dx%d to %dx%d", width, height, targetWidth, targetHeight)
	return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos)
}

// constrain returns the dimensions to downscale to, and whether any
// downscale is needed at all.
func constrain(width, height, maxDimension, maxPixels int) (int, int, bool) {
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return width, height, false
	}

	targetWidth, targetHeight := width, height

	// First, constrain by max dimension
	if width > maxDimension || height > maxDimension {
		if width > height {
			targetWidth = maxDimension
			targetHeight = height * maxDimension / width
		} else {
			targetHeight = maxDimension
			targetWidth = width * maxDimension / height
		}
	}

	// Then, constrain by total pixels if still too large
	if targetPixels := targetWidth * targetHeight; targetPixels > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(targetPixels))
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	return max(1, targetWidth), max(1, targetHeight), true
}

func openOriented(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// DetectFormat sniffs the container format from the first bytes of a file.
// It is used for diagnostics when a decode fails; an unrecognised header
// yields "unknown" and no error.
func DetectFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 12)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	header = header[:n]

	switch {
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return "jpeg", nil
	case len(header) >= 4 && header[0] == 0x89 && header[1] == 'P' && header[2] == 'N' && header[3] == 'G':
		return "png", nil
	case len(header) >= 4 && string(header[:4]) == "GIF8":
		return "gif", nil
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WEBP":
		return "webp", nil
	case len(header) >= 2 && header[0] == 'B' && header[1] == 'M':
		return "bmp", nil
	case len(header) >= 4 && (string(header[:4]) == "II*\x00" || string(header[:4]) == "MM\x00*"):
		return "tiff", nil
	case len(header) >= 12 && string(header[4:8]) == "ftyp":
		switch string(header[8:12]) {
		case "heic", "heix", "hevc", "hevx", "mif1", "msf1":
			return "heif", nil
		case "avif", "avis":
			return "avif", nil
		}
	}
	return "unknown", nil
}
