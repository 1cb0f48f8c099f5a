package metadata

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/bstardust/geometalens/internal/exifdate"
)

// Record is one raw exiftool record. Its lookup methods take candidate keys
// in priority order and return the first usable value. Empty strings, zero
// numbers, booleans and values of the wrong kind are skipped.
type Record map[string]interface{}

// String returns the first non-empty text value. Numbers keep their literal
// form.
func (r Record) String(keys ...string) *string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if v != "" {
				return &v
			}
		case json.Number:
			if f, err := v.Float64(); err == nil && f != 0 {
				s := v.String()
				return &s
			}
		default:
			if f, ok := number(v); ok && f != 0 {
				s := formatFloat(f)
				return &s
			}
		}
	}
	return nil
}

// Float returns the first non-zero number.
func (r Record) Float(keys ...string) *float64 {
	for _, k := range keys {
		if f, ok := number(r[k]); ok && f != 0 {
			return &f
		}
	}
	return nil
}

// Int returns the first non-zero whole number.
func (r Record) Int(keys ...string) *int64 {
	for _, k := range keys {
		f, ok := number(r[k])
		if !ok || f == 0 || f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
			continue
		}
		n := int64(f)
		return &n
	}
	return nil
}

// Date returns the first non-empty text value converted with
// exifdate.Convert. Unparseable dates are returned unchanged.
func (r Record) Date(keys ...string) *string {
	for _, k := range keys {
		if s, ok := r[k].(string); ok && s != "" {
			out := exifdate.Convert(s)
			return &out
		}
	}
	return nil
}

// Number returns the value at key when it is numeric, zero included.
func (r Record) Number(key string) (float64, bool) {
	return number(r[key])
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
