// Package tui is the interactive presentation layer: a bubbletea program
// that lists a folder, loads its previews through a [session.Poller] and
// lets the user zoom, navigate and reorder them.
//
// The poller is only ever ticked from Update, so every [Item] is built
// on the bubbletea goroutine. Previews are drawn with upper half blocks,
// two image rows per terminal row.
package tui
