// Package record models a single API result item as an ordered set of JSON fields.
//
// Field order follows the JSON document, which is what the CSV writer uses to
// derive its header row.
package record

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var (
	// ErrNotObject is returned when a JSON value is not an object.
	ErrNotObject = errors.New("json value is not an object")

	// ErrInvalidJSON is returned when the input is not valid JSON.
	ErrInvalidJSON = errors.New("json contents are invalid")
)

// Record is one fetched item. The zero value is an empty record.
type Record struct {
	keys   []string
	values map[string]gjson.Result
}

// Parse decodes a JSON object into a Record, keeping key order.
func Parse(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, ErrInvalidJSON
	}
	rec, err := FromResult(gjson.ParseBytes(data))
	if err != nil {
		return Record{}, errors.Wrap(err, "parse record")
	}
	return rec, nil
}

// FromResult builds a Record from an already parsed gjson object.
// Duplicate keys keep their first position and last value.
func FromResult(obj gjson.Result) (Record, error) {
	if !obj.IsObject() {
		return Record{}, ErrNotObject
	}

	rec := Record{values: make(map[string]gjson.Result)}
	obj.ForEach(func(key, value gjson.Result) bool {
		rec.set(key.String(), value)
		return true
	})
	return rec, nil
}

// New builds a Record from alternating key, JSON-literal pairs.
// It is meant for tests and fixtures: New("name", `"a"`, "id", `1`).
func New(pairs ...string) Record {
	rec := Record{values: make(map[string]gjson.Result)}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.set(pairs[i], gjson.Parse(pairs[i+1]))
	}
	return rec
}

func (r *Record) set(key string, value gjson.Result) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the field names in document order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Has reports whether the record carries the field.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Get returns the raw JSON value of a field.
func (r Record) Get(key string) (gjson.Result, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Cell renders a field as a CSV cell.
// Strings are unquoted, numbers and booleans keep their JSON form,
// null and missing fields are empty, objects and arrays stay compact JSON.
func (r Record) Cell(key string) string {
	v, ok := r.values[key]
	if !ok {
		return ""
	}

	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw
	default:
		return string(pretty.Ugly([]byte(v.Raw)))
	}
}

// Cells renders the given fields in order.
func (r Record) Cells(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.Cell(k)
	}
	return out
}
