package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pixsort/internal/filesystem"
	"pixsort/internal/logging"
)

// ListImages returns the absolute paths of the regular files directly in
// dir whose extension matches ext, compared case-insensitively, sorted by
// file name. Subdirectories are not descended into.
func ListImages(dir, ext string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	ext = NormalizeExtension(ext)
	if ext == "" {
		return nil, fmt.Errorf("no extension given")
	}
	if !ImageExtensions[ext] {
		logging.Warn("Listing %s: extension %s is not a known image format, files will show as placeholders", abs, ext)
	}

	entries, err := filesystem.ReadDirWithRetry(abs, filesystem.DefaultRetryConfig(filesystem.VolumeSource))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", abs, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) != ext {
			continue
		}
		if !e.Type().IsRegular() && !linksToFile(filepath.Join(abs, e.Name())) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(abs, name)
	}

	logging.Debug("Listed %d %s files in %s", len(paths), ext, abs)
	return paths, nil
}

func linksToFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&fs.ModeType == 0
}
