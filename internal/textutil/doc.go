// Package textutil holds string helpers for turning titles and identifiers
// into filesystem-safe names.
package textutil
