// Package logtail reads the tail of the feedsync log file and renders its
// JSON lines for the in-app log pane.
//
// Read keeps a ring buffer of the last N lines so large files are scanned
// once without being held in memory. Format turns a zerolog JSON record into
// a single human line:
//
//	15:04:05 WARN  [feed] load next page failed error=boom page=3
//
// Keys other than time, level, component and message are appended as sorted
// key=value pairs. Anything that does not parse as a JSON object is shown
// verbatim.
package logtail
