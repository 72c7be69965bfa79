// Package logging provides the leveled logger used across pixsort.
//
// Levels are debug, info, warn and error. The level comes from
// PIXSORT_LOG_LEVEL, then LOG_LEVEL (DEBUG=1 forces debug), and the
// --log-level flag overrides both through SetLevel. While the thumbnail
// grid is on screen, output is redirected with SetOutput so log lines
// never tear the rendered screen.
package logging
