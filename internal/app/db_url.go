package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL appends driver options that cannot live in code. Some
// pgbouncer deployments reject binary result rows from prepared statements,
// so the flag is surfaced through config.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	dbURL := strings.TrimSpace(raw)
	if dbURL == "" || !disablePreparedBinaryResult {
		return dbURL
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
