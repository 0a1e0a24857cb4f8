// Package api is the inbound facade the HTTP layer and the CLI call into.
// It wires the resolver, extractor, downloaders, cache, and retention
// manager together and tags every request with a correlation ID.
package api
