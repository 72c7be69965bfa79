// Package cache is the on-disk thumbnail cache.
//
// Entries live in one flat directory as {identity}_{size}.jpg, where
// identity is a SHA-256 of the source's absolute path, mtime and byte size
// (see [DeriveIdentity]). Editing, touching or moving a source therefore
// orphans its old entries instead of serving stale pixels; the orphans are
// reclaimed by [EnforceBudget], which runs once at startup and evicts by
// oldest modification time until the directory fits its byte budget.
//
// Every entry is independently regenerable, so the directory can be pruned
// or deleted by hand at any time. Read and write failures are never fatal:
// [Store.Get] reports them as [LookupError], which callers treat exactly
// like a miss, and [Store.Put] errors are logged and dropped.
package cache
