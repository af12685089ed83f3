package domain

import "errors"

// ErrMalformedPayload marks a remote response missing fields or
// structure the adapters require. It indicates a remote schema change,
// so it aborts the affected pass instead of being skipped silently.
var ErrMalformedPayload = errors.New("malformed remote payload")

// ErrConflict marks a unique-constraint violation on keys the dedup
// layer should have resolved; it always rolls the pass back.
var ErrConflict = errors.New("persistence conflict")
