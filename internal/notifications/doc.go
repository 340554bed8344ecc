// Package notifications delivers optional push notifications through
// ntfy for session outcomes, gate decisions, and errors. Without a
// configured topic every notification is a no-op.
package notifications
