// Package notifications pushes item and batch events to ntfy.
//
// The topic comes from [notifications] in config.toml. Without a topic the
// service is a no-op, so callers never need to check whether notifications
// are enabled.
package notifications
