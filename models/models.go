package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Collection names stored in the database document.
const (
	CollectionUsers        = "users"
	CollectionTutorials    = "tutorials"
	CollectionMentorships  = "mentorships"
	CollectionInternships  = "internships"
	CollectionApplications = "applications"
	CollectionProgress     = "progress"
)

// Collections lists every collection that must exist in a Document, in file order.
var Collections = []string{
	CollectionUsers,
	CollectionTutorials,
	CollectionMentorships,
	CollectionInternships,
	CollectionApplications,
	CollectionProgress,
}

// TimestampLayout is the ISO-8601 UTC layout used for createdAt / updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record is one untyped entry in a collection.
type Record map[string]any

// Document is the entire persisted state: collection name -> ordered records.
type Document map[string][]Record

// NewDocument returns a Document with every known collection present and empty.
func NewDocument() Document {
	doc := make(Document, len(Collections))
	for _, name := range Collections {
		doc[name] = []Record{}
	}
	return doc
}

// Normalize makes sure every known collection exists (nil slices become empty).
func (d Document) Normalize() {
	for _, name := range Collections {
		if d[name] == nil {
			d[name] = []Record{}
		}
	}
}

// Clone returns a shallow copy of the record. Nested values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's id in canonical string form ("" when unset).
func (r Record) ID() string {
	return IDString(r["id"])
}

// String returns the named field when it is a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the named field when it is a bool.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Without returns a copy of the record minus the given fields.
func (r Record) Without(fields ...string) Record {
	out := r.Clone()
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// IDString converts an id value (string or JSON number) to its canonical string,
// so 1, 1.0, json.Number("1") and "1" all compare equal.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return strconv.FormatInt(n, 10)
		}
		if f, err := id.Float64(); err == nil {
			return formatFloatID(f)
		}
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		return formatFloatID(id)
	default:
		b, err := json.Marshal(id)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func formatFloatID(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IDNumber returns the numeric value of an id for next-id computation.
// Numbers are used as-is, numeric strings are parsed, anything else counts as 0.
func IDNumber(v any) float64 {
	switch id := v.(type) {
	case json.Number:
		f, err := id.Float64()
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(id)
	case int64:
		return float64(id)
	case float64:
		return id
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(id), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Timestamp formats t the way records store createdAt / updatedAt.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Now is the current time as a record timestamp.
func Now() string {
	return Timestamp(time.Now())
}
