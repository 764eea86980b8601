// Package notifications delivers run outcomes via ntfy.
//
// The ntfy implementation publishes to the topic configured in config.toml
// and degrades to a no-op when no topic is set. Per-event toggles let users
// mute completion or error messages independently.
package notifications
