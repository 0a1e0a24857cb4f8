// Package ytdlp wraps the external media-extraction tool behind a small
// capability interface so the resolution and download components never touch
// process plumbing directly and tests can substitute canned stdio.
//
// Each operation is bounded by a wall-clock timeout and an output-capture cap;
// a deadline kills the subprocess rather than leaving it orphaned.
package ytdlp
