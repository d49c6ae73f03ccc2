// Package assemble turns per-unit recognition outcomes back into one
// ordered document, inserting position markers between units and
// bracketed placeholders where a unit failed.
package assemble
