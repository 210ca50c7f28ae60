// Package batch runs a list of locators through the pipeline one after
// another.
//
// A failed item never stops the batch; only context cancellation does, and
// the items that never started are then recorded as canceled failures.
// ParseList reads the plain-text list format: one locator per line, blank
// lines and #-comments ignored, duplicates dropped.
package batch
