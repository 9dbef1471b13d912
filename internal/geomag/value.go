package geomag

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a field element that may be indeterminate. The zero Value is
// Indeterminate.
type Value struct {
	v  float64
	ok bool
}

// Indeterminate is the Value of an element the model cannot resolve.
var Indeterminate = Value{}

// Known returns a determinate Value.
func Known(v float64) Value {
	return Value{v: v, ok: true}
}

// Float returns the value and whether it is determinate.
func (v Value) Float() (float64, bool) {
	return v.v, v.ok
}

// IsIndeterminate reports whether the element could not be determined.
func (v Value) IsIndeterminate() bool {
	return !v.ok
}

// Or returns the value, or def when indeterminate.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

func (v Value) apply(f func(float64) float64) Value {
	if !v.ok {
		return Indeterminate
	}
	return Known(f(v.v))
}

// String formats the value, or "indeterminate".
func (v Value) String() string {
	if !v.ok {
		return "indeterminate"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes an indeterminate value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON decodes null as Indeterminate.
func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = Indeterminate
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Known(f)
	return nil
}
