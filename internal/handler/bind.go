package handler

// bind.go normalizes request input. The web client sends camelCase field
// names while older clients send snake_case; both name the same logical
// fields. Bodies are decoded into a generic map once and read through the
// alias helpers here, so the service layer only ever sees normalized
// values.

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// decodeBody parses a JSON request body into a map, keeping numbers as
// json.Number so large amounts survive without float rounding.
func decodeBody(c echo.Context) (map[string]any, error) {
	m := map[string]any{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func pickString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func pickInt(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return n, true
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return n, true
			}
		case float64:
			return int64(t), true
		}
	}
	return 0, false
}

func pickUint(m map[string]any, keys ...string) (uint64, bool) {
	if n, ok := pickInt(m, keys...); ok && n >= 0 {
		return uint64(n), true
	}
	return 0, false
}

// formValue returns the first non-empty form value among the aliases.
func formValue(c echo.Context, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(c.FormValue(k)); v != "" {
			return v
		}
	}
	return ""
}

// queryValue returns the first non-empty query parameter among the aliases.
func queryValue(c echo.Context, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(c.QueryParam(k)); v != "" {
			return v
		}
	}
	return ""
}

var closeTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimeValue accepts the timestamp formats the clients actually send.
func parseTimeValue(s string) (time.Time, bool) {
	for _, layout := range closeTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
