package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent PATCH field from an explicit null
// (RFC 7396). Sent is false when the field was missing; Value is nil when
// it was null.
type Optional[T any] struct {
	Sent  bool
	Value *T
}

// UnmarshalJSON is only called for fields present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Sent = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Get reports whether the field was sent. A null yields the zero value.
func (o Optional[T]) Get() (T, bool) {
	var zero T
	if !o.Sent || o.Value == nil {
		return zero, o.Sent
	}
	return *o.Value, true
}
