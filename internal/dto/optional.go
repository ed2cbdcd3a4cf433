package dto

import (
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, explicitly null, or set to a
// value. Absent fields keep their zero value because UnmarshalJSON is never
// called for them, which is what makes partial updates type-checked instead
// of relying on runtime introspection.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field was supplied with a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
