// Command ytlantern is the operator CLI: it parses video URLs, runs
// downloads, fetches subtitles, and inspects storage from the terminal.
package main
