package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"techhub/logger"
	"techhub/models"

	"github.com/tidwall/gjson"
)

// --- Query Structures ---

// Condition is a single "field equals value" test. Field is a gjson path, so
// "location.city" addresses nested fields.
type Condition struct {
	Field string
	Value any // string, number, bool or nil
	// ByID compares canonical id strings instead of typed values, so 3 matches "3".
	ByID bool
}

// Query is a conjunction of conditions. The empty query matches every record.
type Query []Condition

// Where starts a query with a single typed-equality condition.
func Where(field string, value any) Query {
	return Query{{Field: field, Value: value}}
}

// WhereID starts a query matching a reference field by canonical id.
func WhereID(field string, id any) Query {
	return Query{{Field: field, Value: id, ByID: true}}
}

// And appends a typed-equality condition.
func (q Query) And(field string, value any) Query {
	return append(q[:len(q):len(q)], Condition{Field: field, Value: value})
}

// AndID appends a canonical-id condition.
func (q Query) AndID(field string, id any) Query {
	return append(q[:len(q):len(q)], Condition{Field: field, Value: id, ByID: true})
}

// --- Query Parsing ---

var validOperators = map[string]bool{
	"eq":     true,
	"equals": true,
}

// ParseFilters parses filter strings of the form "field eq value" into a Query.
// The value is typed the same way JSON literals are: "quoted" is a string, null,
// numbers and true/false keep their type, anything else is a bare string.
func ParseFilters(filters []string) (Query, error) {
	var q Query
	for i, raw := range filters {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, fmt.Errorf("filter at index %d is empty", i)
		}
		cond, err := parseSingleCondition(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid filter at index %d ('%s'): %w", i, raw, err)
		}
		q = append(q, cond)
	}
	return q, nil
}

// parseSingleCondition parses "field operator value".
func parseSingleCondition(conditionStr string) (Condition, error) {
	parts := strings.Fields(conditionStr)
	if len(parts) < 3 {
		return Condition{}, errors.New("filter must have a field, an operator and a value")
	}

	field := parts[0]
	operator := strings.ToLower(parts[1])
	if !validOperators[operator] {
		return Condition{}, fmt.Errorf("invalid operator '%s'", parts[1])
	}

	// Keep the value's own spacing: everything after the operator token.
	rest := strings.TrimSpace(conditionStr[len(parts[0]):])
	rawValue := strings.TrimSpace(rest[len(parts[1]):])

	return Condition{Field: field, Value: parseValue(rawValue)}, nil
}

// parseValue types a literal. Order matters: quoted, null, number, bool, string.
func parseValue(v string) any {
	switch {
	case len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"':
		return v[1 : len(v)-1]
	case v == "null":
		return nil
	}
	// NaN and the infinities compare as plain strings.
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
		return b
	}
	return v
}

// --- Query Evaluation ---

// Match reports whether rec satisfies every condition in q.
func (q Query) Match(rec models.Record) bool {
	if len(q) == 0 {
		return true
	}
	jsonBytes, err := json.Marshal(rec)
	if err != nil {
		logger.Log.Debugf("Could not marshal record %s for query evaluation: %v", rec.ID(), err)
		return false
	}
	for _, cond := range q {
		if !cond.matches(gjson.GetBytes(jsonBytes, cond.Field)) {
			return false
		}
	}
	return true
}

// matches compares a resolved field against the condition value with typed equality.
// A missing field only matches a nil value.
func (c Condition) matches(target gjson.Result) bool {
	if c.ByID {
		if !target.Exists() {
			return false
		}
		switch target.Type {
		case gjson.Number:
			return models.IDString(json.Number(target.Raw)) == models.IDString(c.Value)
		case gjson.String:
			return target.Str == models.IDString(c.Value)
		default:
			return false
		}
	}

	switch want := c.Value.(type) {
	case nil:
		return !target.Exists() || target.Type == gjson.Null
	case string:
		return target.Type == gjson.String && target.Str == want
	case bool:
		return (target.Type == gjson.True && want) || (target.Type == gjson.False && !want)
	default:
		n, ok := toFloat(want)
		return ok && target.Type == gjson.Number && target.Num == n
	}
}

// toFloat widens the numeric types a caller may put in a Condition.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
