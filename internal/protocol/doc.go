// Package protocol owns the DREAM wire contract and parsing primitives.
//
// Ownership boundary:
// - command/response envelope shapes and enums
// - newline-terminated JSON line IO
// - command id generation
package protocol
