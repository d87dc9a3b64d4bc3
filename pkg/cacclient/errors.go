package cacclient

import "errors"

// Sentinel errors for the error kinds named in spec §7. Construction
// errors (ErrFetch, ErrDecode) surface to the caller of Client.New since no
// usable snapshot exists yet; refresh-time occurrences of the same kinds
// are logged and swallowed, never surfaced to read-API callers.
var (
	// ErrFetch is returned for transport failures or a non-2xx/304 HTTP
	// status during a fetch.
	ErrFetch = errors.New("cacclient: fetch failed")

	// ErrNotModified marks a 304 response internally. refresh() never
	// surfaces it as an error return (it reports a plain bool), but it is
	// exported so callers wrapping the HTTP layer themselves can classify
	// a raw response the same way this package does.
	ErrNotModified = errors.New("cacclient: not modified")

	// ErrDecode is returned when a response body does not parse as a
	// Document.
	ErrDecode = errors.New("cacclient: decode failed")

	// ErrLock corresponds to the original source's poisoned-lock case. A
	// sync.RWMutex cannot be poisoned, so nothing in this package returns
	// ErrLock; it is kept only so callers matching on the full error-kind
	// set from spec §7 have a stable value to compare against.
	ErrLock = errors.New("cacclient: lock error")

	// ErrUnknownTenant is returned by Factory.GetClient for a tenant with
	// no registered client.
	ErrUnknownTenant = errors.New("cacclient: unknown tenant")
)
