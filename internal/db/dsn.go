package db

import (
	"regexp"
	"strings"
)

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	kvPassword    = regexp.MustCompile(`(?i)(password=)(\S+)`)
	urlCredential = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
)

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a lib/pq
// key=value list, trims quotes and whitespace and defaults sslmode to disable
// for key=value lists.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	// not key=value either: let the driver report it
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// sqliteParams are appended unless the DSN already sets them. Writers wait
// for the lock instead of failing with SQLITE_BUSY, and transactions take the
// write lock at BEGIN so a read-then-write never deadlocks on upgrade.
var sqliteParams = []struct{ key, alias, value string }{
	{"_foreign_keys", "_fk", "on"},
	{"_busy_timeout", "_timeout", "5000"},
	{"_txlock", "", "immediate"},
}

// SQLiteDSN enables foreign key enforcement, which SQLite leaves off by default,
// and configures locking for concurrent writers.
func SQLiteDSN(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "file:") && !strings.Contains(s, "?") {
		s = "file:" + s
	}
	for _, p := range sqliteParams {
		if strings.Contains(s, p.key+"=") || (p.alias != "" && strings.Contains(s, p.alias+"=")) {
			continue
		}
		sep := "&"
		if !strings.Contains(s, "?") {
			sep = "?"
		}
		s += sep + p.key + "=" + p.value
	}
	return s
}

// MaskDSN hides the password of a key=value or URL DSN for logging.
func MaskDSN(dsn string) string {
	dsn = kvPassword.ReplaceAllString(dsn, `${1}***`)
	return urlCredential.ReplaceAllString(dsn, `${1}***${3}`)
}
