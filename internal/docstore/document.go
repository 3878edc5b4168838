package docstore

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// IDField is the document identifier key.
const IDField = "_id"

// Document is a schemaless record. Nested objects are Documents, arrays are []any,
// timestamps are time.Time (UTC) regardless of backend.
type Document map[string]any

// Has reports whether the key is present with a non-nil value.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// ID returns the document identifier as a string.
func (d Document) ID() string {
	return d.String(IDField)
}

// String returns the value as a string. Numbers are formatted; other types yield "".
func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int, int32, int64:
		n, _ := toInt(v)
		return strconv.Itoa(n)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Float returns a numeric value. Numeric strings are parsed; anything else reports false.
func (d Document) Float(key string) (float64, bool) {
	return ToFloat(d[key])
}

// Int returns an integral value. Numeric strings such as "3" are accepted.
func (d Document) Int(key string) (int, bool) {
	return toInt(d[key])
}

// Time returns a timestamp value. Date strings in RFC3339 or YYYY-MM-DD form are parsed.
func (d Document) Time(key string) (time.Time, bool) {
	return ToTime(d[key])
}

// Doc returns a nested document.
func (d Document) Doc(key string) (Document, bool) {
	switch v := d[key].(type) {
	case Document:
		return v, true
	case map[string]any:
		return Document(v), true
	default:
		return nil, false
	}
}

// Slice returns a nested array.
func (d Document) Slice(key string) []any {
	if v, ok := d[key].([]any); ok {
		return v
	}
	return nil
}

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Without returns a copy with the given keys removed.
func (d Document) Without(keys ...string) Document {
	out := d.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// ToFloat converts a stored value to float64.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	f, ok := ToFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	storedTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToTime converts a stored value to a UTC time.
func ToTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
