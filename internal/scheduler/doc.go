// Package scheduler runs thumbnail jobs on a bounded pool of goroutines.
//
// SubmitAll starts at most the configured number of workers for one batch
// of jobs and returns a Handle. Results land in per-index slots that the
// presentation side can probe without blocking, and each finished index is
// also announced once on Handle.Finished so a poller never has to scan.
// All batches of one Pool share its run slots, so a superseded batch that
// is still finishing a job counts against the limit of the next one.
//
// Cancellation is cooperative. Jobs still queued when Handle.Cancel is
// called are dropped without running; a job already running finishes and
// its result stays in its slot for the caller to ignore.
package scheduler
