// Package media finds and decodes the source images pixsort sorts.
//
// ListImages enumerates one folder, non-recursively, filtered by
// extension and ordered by file name. LoadImageConstrained decodes a
// single image with EXIF orientation applied, downscaling anything over
// MaxImageDimension or MaxImagePixels straight after decode so a huge
// scan cannot exhaust memory inside a thumbnail worker.
package media
