package authclient

import (
	"encoding/json"
	"net/http"
	"strings"
)

// extractMessage picks the most specific message from an error body:
// a meaningful top-level message/error field, else a distinguishing
// detail one level down, else the status text.
func extractMessage(body []byte, status int) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return http.StatusText(status)
	}

	if s := stringField(m, "message", "error", "detail"); !isGeneric(s) {
		return s
	}

	for _, v := range m {
		if sub, ok := v.(map[string]any); ok {
			if s := stringField(sub, "message", "error", "detail"); !isGeneric(s) {
				return s
			}
		}
	}

	if s := stringField(m, "message", "error", "detail"); s != "" {
		return s
	}
	return http.StatusText(status)
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func isGeneric(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error", "internal server error", "bad request", "request failed":
		return true
	}
	return false
}
