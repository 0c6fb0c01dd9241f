// Package protocol owns the AMI wire layer.
//
// Ownership boundary:
// - raw line-group framing (banner, blank-line terminators, --END COMMAND-- bodies)
// - message parsing and event/response classification
// - action request serialization
//
// The wire format is line oriented with CRLF terminators. A message is one
// or more "Key: Value" header lines ended by a bare CRLF, except while a
// multi-line command body is in flight, in which case the body runs until a
// literal --END COMMAND-- marker. Not every server/command pair frames its
// output consistently, so classification is a recovery ladder rather than a
// strict grammar.
package protocol
