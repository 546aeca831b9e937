// Package capi is the flat boundary surface of the library: opaque
// integer handles instead of pointers, completion callbacks instead of
// return values, and explicit ownership transfer for every buffer that
// crosses outward.
//
// The surface is built for embedding under a foreign-function bridge.
// Inputs are borrowed: byte slices passed in are copied before any
// operation suspends, so the caller may reuse its buffer the moment a
// call returns. Outputs are owned: OwnedBytes and OwnedString values
// delivered to callbacks must be released exactly once with BytesFree,
// StringFree, DocEntryFree or DocEventFree. Freeing the zero value is
// a no-op.
//
// Every fallible operation completes through its callback record
// exactly once, with OnSuccess or OnFailure but never both, and never
// while an internal lock is held. Blocking operations complete on the
// calling goroutine; streaming operations (GetWithProgress, DocGetMany,
// DocSubscribe) complete from a node worker goroutine.
package capi
