package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is a figure that is either a finite number or not available (NA).
// The zero Value is NA.
type Value struct {
	v  float64
	ok bool
}

// NA is the not-available marker.
var NA = Value{}

// Some wraps f. NaN and infinities collapse to NA.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NA
	}
	return Value{v: f, ok: true}
}

// FromPtr converts a nullable number, as decoded from JSON, into a Value.
func FromPtr(p *float64) Value {
	if p == nil {
		return NA
	}
	return Some(*p)
}

// Available reports whether v holds a number.
func (v Value) Available() bool { return v.ok }

// Get returns the number and whether it is available.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Or returns the number, or def when v is NA.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

// Ptr returns nil for NA.
func (v Value) Ptr() *float64 {
	if !v.ok {
		return nil
	}
	f := v.v
	return &f
}

func (v Value) String() string {
	if !v.ok {
		return "NA"
	}
	return strconv.FormatFloat(v.v, 'g', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = NA
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
