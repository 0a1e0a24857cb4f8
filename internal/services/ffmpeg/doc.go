// Package ffmpeg wraps the transcoding tool used to convert subtitle
// tracks between container formats.
package ffmpeg
