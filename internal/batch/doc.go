// Package batch orchestrates recognition over collections of sources:
// directory passes, spreadsheet-controlled passes, and the summary
// stage. Per-item failures are recorded in the pass statistics and
// never abort the remaining items.
package batch
