// Package bridge owns the HTTP face of a manager session. It keeps a
// bounded buffer of recently observed events and exposes health, event
// history, and action passthrough over a gin router.
package bridge
