package tourapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"tourdesk/internal/domain"
)

// keys whose messages are shown without a field prefix
var bareKeys = map[string]bool{
	"detail":           true,
	"non_field_errors": true,
	"message":          true,
}

// FlattenErrors turns a backend validation body of the shape
// {field: [msg] | {nested}} into sorted "field: message" lines. Nested objects
// are reported under their leaf field name; list indexes keep the parent name.
func FlattenErrors(body any) []string {
	var out []string
	flatten("", body, &out)
	return out
}

func flatten(field string, v any, out *[]string) {
	switch t := v.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			switch {
			case isIndex(k):
				child = field
			case bareKeys[k]:
				child = ""
			}
			flatten(child, t[k], out)
		}
	case []any:
		for _, e := range t {
			flatten(field, e, out)
		}
	case string:
		*out = append(*out, line(field, t))
	default:
		*out = append(*out, line(field, fmt.Sprint(t)))
	}
}

func line(field, msg string) string {
	msg = strings.TrimSpace(msg)
	if field == "" {
		return msg
	}
	return field + ": " + msg
}

func isIndex(k string) bool {
	_, err := strconv.Atoi(k)
	return err == nil
}

// statusError maps a non-2xx response to a domain error. Field-keyed bodies on
// 4xx become FieldErrors so callers can show them inline.
func statusError(op, resource string, status int, body []byte) error {
	upstream := domain.UpstreamError{Op: op, Status: status}
	if status == http.StatusNotFound {
		return domain.NotFoundError{Resource: resource, Err: upstream}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		if obj, ok := decoded.(map[string]any); ok && status >= 400 && status < 500 && status != http.StatusUnauthorized && status != http.StatusForbidden {
			lines := FlattenErrors(obj)
			if len(lines) > 0 {
				return domain.FieldErrors{Lines: lines, Err: upstream}
			}
		}
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	if snippet != "" {
		upstream.Err = fmt.Errorf("%s", snippet)
	}
	return upstream
}
