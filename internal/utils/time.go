package utils

import "time"

const layoutDateTime = "2006-01-02 15:04:05"

// NowUTC returns current time in UTC. All task and ledger timestamps are
// stored in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime)
}
