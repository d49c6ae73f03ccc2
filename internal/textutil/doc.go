// Package textutil provides text cleanup helpers for recognition output and
// filesystem-safe naming.
package textutil
