package lyt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// paramAliases maps the type hints accepted in {name:type} to their canonical names.
var paramAliases = map[string]string{
	"UUID":   "uuid",
	"float":  "float64",
	"double": "float64",
	"":       "string",
}

// ParamKind returns the canonical type of a path parameter hint, or "" if
// the hint names no built-in parser.
func ParamKind(hint string) string {
	if alias, ok := paramAliases[hint]; ok {
		hint = alias
	}
	switch hint {
	case "string", "int", "float64", "float32", "uuid":
		return hint
	}
	return ""
}

// ParseParam converts a raw value according to a {name:type} hint. Unknown
// hints return the raw string.
func ParseParam(hint, raw string) (any, error) {
	switch ParamKind(hint) {
	case "int":
		return strconv.Atoi(raw)
	case "float64":
		return strconv.ParseFloat(raw, 64)
	case "float32":
		f, err := strconv.ParseFloat(raw, 32)
		return float32(f), err
	case "uuid":
		return uuid.Parse(raw)
	}
	return raw, nil
}

// ParamInt reads a path parameter as an int. A malformed value is a 400.
func ParamInt(c RequestContext, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, badParam(name, err)
	}
	return v, nil
}

// ParamFloat reads a path parameter as a float64.
func ParamFloat(c RequestContext, name string) (float64, error) {
	v, err := strconv.ParseFloat(c.Param(name), 64)
	if err != nil {
		return 0, badParam(name, err)
	}
	return v, nil
}

// ParamUUID reads a path parameter as a UUID.
func ParamUUID(c RequestContext, name string) (uuid.UUID, error) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badParam(name, err)
	}
	return v, nil
}

func badParam(name string, err error) *HttpError {
	return ErrBadRequest(fmt.Sprintf("invalid parameter %q", name)).WithInternal(err)
}

// Query wraps a request's query string with typed accessors. Missing or
// malformed values fall back to the given default.
type Query struct {
	c RequestContext
}

// QueryOf returns the query accessor for c
func QueryOf(c RequestContext) Query {
	return Query{c: c}
}

// Get returns the value for key, or "" if absent
func (q Query) Get(key string) string {
	return q.c.QueryParam(key)
}

// GetDefault returns the value for key, or def if absent
func (q Query) GetDefault(key, def string) string {
	if v := q.c.QueryParam(key); v != "" {
		return v
	}
	return def
}

// GetInt returns the value for key as an int, or def if absent or malformed
func (q Query) GetInt(key string, def int) int {
	if v := q.c.QueryParam(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// GetBool accepts true, 1, yes and on, ignoring case.
func (q Query) GetBool(key string) bool {
	switch strings.ToLower(q.c.QueryParam(key)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
