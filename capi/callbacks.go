package capi

// Callback records follow three shapes. Single-result: OnSuccess xor
// OnFailure, exactly once. Streaming: zero or more item calls, then
// OnComplete xor OnFailure. Always-completes: OnComplete exactly once.
// A nil func field silently drops that delivery; Userdata is handed
// back verbatim on every call.

// NodeCallback completes NodeCreate.
type NodeCallback struct {
	OnSuccess func(h NodeHandle, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// StatusCallback completes operations with no payload: NodeClose,
// AuthorImport, BlobTagSet, BlobTagDelete.
type StatusCallback struct {
	OnSuccess func(userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// TicketCallback completes operations that yield a serialized ticket:
// Put, DocShare, BlobTicketCreate.
type TicketCallback struct {
	OnSuccess func(ticket OwnedString, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// BytesCallback completes Get and DocReadContent.
type BytesCallback struct {
	OnSuccess func(data OwnedBytes, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// ProgressCallback completes GetWithProgress: progress items, then the
// downloaded bytes as the terminal success.
type ProgressCallback struct {
	OnProgress func(downloaded, total uint64, userdata any)
	OnSuccess  func(data OwnedBytes, userdata any)
	OnFailure  func(errMsg string, userdata any)
	Userdata   any
}

// InfoCallback completes NodeInfo.
type InfoCallback struct {
	OnSuccess func(info Info, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// ValidateCallback completes ValidateTicket. It always completes and
// never fails.
type ValidateCallback struct {
	OnComplete func(info TicketInfo, userdata any)
	Userdata   any
}

// AuthorCallback completes AuthorCreate and AuthorFromHex.
type AuthorCallback struct {
	OnSuccess func(id AuthorID, secret AuthorSecret, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// DocCallback completes DocCreate and DocJoin with the handle and the
// hex namespace the document lives under. The namespace is owned by
// the caller.
type DocCallback struct {
	OnSuccess func(dh DocHandle, namespace OwnedString, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// HashCallback completes DocSet with the stored content hash.
type HashCallback struct {
	OnSuccess func(hash OwnedString, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// EntryCallback completes DocGet. A missing key succeeds with a nil
// entry.
type EntryCallback struct {
	OnSuccess func(entry *DocEntry, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// EntriesCallback completes DocGetMany: one OnItem per entry, then
// OnComplete.
type EntriesCallback struct {
	OnItem     func(entry *DocEntry, userdata any)
	OnComplete func(userdata any)
	OnFailure  func(errMsg string, userdata any)
	Userdata   any
}

// CountCallback completes DocDel with the number of tombstoned entries.
type CountCallback struct {
	OnSuccess func(n uint64, userdata any)
	OnFailure func(errMsg string, userdata any)
	Userdata  any
}

// SubscribeCallback receives document events until the subscription is
// canceled or the document closes. Cancellation delivers OnComplete.
type SubscribeCallback struct {
	OnEvent    func(ev *DocEvent, userdata any)
	OnComplete func(userdata any)
	OnFailure  func(errMsg string, userdata any)
	Userdata   any
}
