// Package decode implements tolerant coercion of loosely-typed JSON fields
// into strongly-typed values. The upstream API sends the same field as a
// string, number or boolean depending on the response, sometimes varying
// within one array, so coercion is applied per field and never fails the
// overall decode: unrecognized input yields the type's default.
//
// Coercion rules live only in this package; callers must not re-implement
// shape sniffing at call sites.
package decode

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// parse decodes a raw JSON value preserving number precision.
// The second return value is false for empty, null or malformed input.
func parse(raw json.RawMessage) (any, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// Int coerces a raw JSON value to an integer.
// Priority: native number, string parse, 0.
func Int(raw json.RawMessage) int {
	if v := IntPtr(raw); v != nil {
		return *v
	}
	return 0
}

// IntPtr coerces a raw JSON value to an optional integer.
// Priority: native number, string parse, nil.
func IntPtr(raw json.RawMessage) *int {
	v, ok := parse(raw)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n := int(i)
			return &n
		}
		if f, err := t.Float64(); err == nil {
			n := int(f)
			return &n
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if i, err := strconv.Atoi(s); err == nil {
			return &i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n := int(f)
			return &n
		}
	}
	return nil
}

// Bool coerces a raw JSON value to a boolean.
// Priority: native bool, nonzero integer, recognized string, false.
func Bool(raw json.RawMessage) bool {
	if v := BoolPtr(raw); v != nil {
		return *v
	}
	return false
}

// BoolPtr coerces a raw JSON value to an optional boolean. Strings match
// case-insensitively against {"true","1","yes"} and {"false","0","no"};
// anything else yields nil.
func BoolPtr(raw json.RawMessage) *bool {
	v, ok := parse(raw)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case bool:
		return &t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			b := f != 0
			return &b
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			b := true
			return &b
		case "false", "0", "no":
			b := false
			return &b
		}
	}
	return nil
}

// String coerces a raw JSON value to a string.
// Priority: native string, stringified number or bool, "".
func String(raw json.RawMessage) string {
	if v := StringPtr(raw); v != nil {
		return *v
	}
	return ""
}

// StringPtr coerces a raw JSON value to an optional string.
func StringPtr(raw json.RawMessage) *string {
	v, ok := parse(raw)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case string:
		return &t
	case json.Number:
		s := t.String()
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	}
	return nil
}

// Float coerces a raw JSON value to a float64.
// Priority: native number, string parse, 0.
func Float(raw json.RawMessage) float64 {
	if v := FloatPtr(raw); v != nil {
		return *v
	}
	return 0
}

// FloatPtr coerces a raw JSON value to an optional float64.
func FloatPtr(raw json.RawMessage) *float64 {
	v, ok := parse(raw)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}

// RawTag is a decoded tag entry before conversion to the domain Tag type.
// ID and Group are nil when the server sent a bare string.
type RawTag struct {
	ID    *string
	Name  string
	Group *string
}

// Tags coerces a raw JSON value to a tag list. Accepts a list of tag
// objects, or a list of bare strings each wrapped as a name-only tag.
// Any other shape yields nil.
func Tags(raw json.RawMessage) []RawTag {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	// Unmarshal accepts null, leaving the slice nil
	if elements == nil {
		return nil
	}

	tags := make([]RawTag, 0, len(elements))
	for _, element := range elements {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(element, &fields); err == nil {
			tags = append(tags, RawTag{
				ID:    StringPtr(fields["id"]),
				Name:  String(fields["name"]),
				Group: StringPtr(fields["group"]),
			})
			continue
		}

		// Bare string entries become name-only tags.
		if name := StringPtr(element); name != nil {
			tags = append(tags, RawTag{Name: *name})
		}
	}
	return tags
}
