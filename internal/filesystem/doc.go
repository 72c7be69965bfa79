/*
Package filesystem wraps os.Stat and os.ReadDir with retry logic for NFS
stale file handle errors.

Image folders and the thumbnail cache frequently live on network shares.
ESTALE (errno 116) is transient there, so it is retried with exponential
backoff (defaults: 3 retries, 50ms doubling up to 500ms). Every other error
is returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig(filesystem.VolumeSource))

Metrics are recorded through an Observer installed with SetObserver; with
no observer installed, nothing is recorded.
*/
package filesystem
