package logger

import (
	"net/url"
	"regexp"
	"strings"
)

var secretKeys = []string{"password", "secret", "token", "api_key", "apikey", "authorization"}

var dsnRegex = regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^\s]+`)

// RedactDSN masks the password of a connection URL.
// "postgres://app:hunter2@db:5432/ledger" → "postgres://app:***@db:5432/ledger"
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); !ok {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return strings.Replace(u.String(), "%2A%2A%2A", "***", 1)
}

func redactValue(key, val string) string {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return "***"
		}
	}
	return dsnRegex.ReplaceAllStringFunc(val, RedactDSN)
}
