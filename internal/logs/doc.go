// Package logs reads the trailing lines of the service log file and can
// follow it for new output, for the CLI logs command.
package logs
