// Package optional tells apart JSON fields that were omitted, sent as
// null, or sent with a value.
package optional

import (
	"bytes"
	"encoding/json"
)

type Value[T any] struct {
	Set   bool // the key was present
	Null  bool // the key was present with a null value
	Value T
}

func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Value: v}
}

func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// UnmarshalJSON only runs when the key is present.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Null = true
		var zero T
		v.Value = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.Value)
}

// Present reports a non-null value.
func (v Value[T]) Present() bool {
	return v.Set && !v.Null
}

// Ptr returns nil for omitted or null fields.
func (v Value[T]) Ptr() *T {
	if !v.Present() {
		return nil
	}
	val := v.Value
	return &val
}
