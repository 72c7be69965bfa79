// Package thumbnail turns one source image into a Set of previews, one per
// configured size.
//
// Each size is looked up in the disk cache first. The source is decoded at
// most once per Produce call, and only if some size missed. Any decode
// failure replaces every preview of the set, cache hits included, with a
// flat grey placeholder, so a broken file looks the same no matter which
// sizes happened to be cached.
package thumbnail
