// Package manager implements the AMI session engine.
//
// Ownership boundary:
// - connection lifecycle (Connect/Login/Close) and session state
// - the router loop that classifies incoming messages
// - the event dispatch loop and callback registry
// - FIFO response correlation for SendAction
// - the action catalog (thin builders over SendAction)
//
// One router goroutine reads the transport and routes each message to
// either the event dispatcher or the oldest caller blocked in SendAction.
// Responses pair with requests strictly by arrival order, never by
// ActionID, so callers issuing overlapping actions concurrently must not
// rely on identifier-based correlation. Failures inside the background
// loops surface on Errors() and terminate the session; every blocked
// caller then receives a TransportError instead of hanging.
package manager
