package models

import (
	"bytes"
	"encoding/json"
)

type optState uint8

const (
	optUnset optState = iota
	optNull
	optSet
)

// Optional is a JSON field that is either absent, explicitly null, or set.
type Optional[T any] struct {
	value T
	state optState
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, state: optSet} }

func Null[T any]() Optional[T] { return Optional[T]{state: optNull} }

// Get returns the value and whether it is set. Null counts as not set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == optSet
}

func (o Optional[T]) IsNull() bool { return o.state == optNull }

// IsZero reports an absent field; used by encoding/json omitzero.
func (o Optional[T]) IsZero() bool { return o.state == optUnset }

// Map applies fn to a set value and leaves absent or null fields alone.
func (o Optional[T]) Map(fn func(T) T) Optional[T] {
	if o.state == optSet {
		o.value = fn(o.value)
	}
	return o
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.state != optSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON only runs when the key is present in the object.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.value, o.state = zero, optNull
		return nil
	}
	if err := json.Unmarshal(b, &o.value); err != nil {
		return err
	}
	o.state = optSet
	return nil
}
