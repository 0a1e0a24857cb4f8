// Package download orchestrates media downloads: format-spec translation,
// deterministic output placement, produced-filename recovery from tool
// output, and failure-cause scraping.
package download
