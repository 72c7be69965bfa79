package media

import (
	"strings"
)

// ImageExtensions lists the extensions pixsort can decode.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// NormalizeExtension lower-cases ext and adds the leading dot if missing.
// "PNG", ".png" and "png" all become ".png".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
