package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strconv"
	"time"
)

// Identity is the content-addressed name of a source image: a hex SHA-256
// of its absolute path, modification time and byte size.
type Identity string

// IdentityLen is the length of every valid Identity.
const IdentityLen = sha256.Size * 2

// DeriveIdentity maps (path, mtime, size) to a stable cache identity. The
// result is the same across process restarts, and any change to one of the
// three inputs yields a different identity, so an edited file is never
// served stale thumbnails under its old name.
func DeriveIdentity(absPath string, modTime time.Time, size int64) Identity {
	mtime := strconv.FormatFloat(float64(modTime.UnixNano())/1e9, 'f', -1, 64)

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte{'|'})
	h.Write([]byte(mtime))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(size, 10)))
	return Identity(hex.EncodeToString(h.Sum(nil)))
}

// IdentityFromInfo derives the identity from a stat result.
func IdentityFromInfo(absPath string, info os.FileInfo) Identity {
	return DeriveIdentity(absPath, info.ModTime(), info.Size())
}

// Valid reports whether id has the shape DeriveIdentity produces.
func (id Identity) Valid() bool {
	if len(id) != IdentityLen {
		return false
	}
	_, err := hex.DecodeString(string(id))
	return err == nil
}
