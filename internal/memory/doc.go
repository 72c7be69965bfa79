// Package memory keeps thumbnail decoding inside a memory budget.
//
// Decoding a full-size source image is the single largest allocation in
// pixsort; a folder of 40MP scans decoded on every core at once can exhaust
// a small machine. Two tools address that:
//
//   - [ConfigureFromEnv] sets GOMEMLIMIT from MEMORY_LIMIT (bytes) and
//     MEMORY_RATIO (default 0.85) unless GOMEMLIMIT is already set.
//   - [Monitor] samples heap usage on an interval. Above the critical
//     watermark it pauses job dispatch and forces a GC; below the high
//     watermark it resumes. Workers call [Monitor.WaitIfPaused] before each
//     job, so in-flight decodes finish but no new ones start.
//
// Without a limit the monitor is inert and WaitIfPaused never blocks.
package memory
