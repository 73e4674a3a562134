package httputil

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryString returns the first non-empty query value among keys.
func QueryString(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// QueryInt parses the first non-empty query value among keys. ok is false when
// a value is present but not an integer; a missing value yields def.
func QueryInt(r *http.Request, def int, keys ...string) (n int, ok bool) {
	raw := QueryString(r, keys...)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// QueryInt64 is QueryInt for int64 values such as snapshot versions.
func QueryInt64(r *http.Request, def int64, keys ...string) (int64, bool) {
	raw := QueryString(r, keys...)
	if raw == "" {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
