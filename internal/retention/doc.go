// Package retention evicts aged downloads from the shared storage tree and
// purges it entirely under disk pressure.
package retention
