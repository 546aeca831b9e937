// Package errors provides the structured error type used throughout the
// library.
//
// Every failure that crosses the language boundary is projected to the
// string form of an Error. The Phase says where the failure happened
// (argument validation, ticket parsing, the store, the network, the docs
// engine) and the Kind says what went wrong. Callers on the far side of
// the boundary see only the message text; the structure exists for the
// Go side, where errors.Is can match on Phase and Kind.
package errors
