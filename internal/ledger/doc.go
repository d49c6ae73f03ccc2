// Package ledger keeps a SQLite history of batch runs: one row per
// run with its final counters, one row per processed source with its
// outcome. The ledger is informational; recognition never depends on
// it.
package ledger
