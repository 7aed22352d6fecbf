package db

import (
	"time"
)

// RefreshRecord is one journaled dashboard build.
type RefreshRecord struct {
	ID         string        `json:"id"`
	AsOf       string        `json:"as_of"`
	Parameters int           `json:"parameters"`
	Duration   time.Duration `json:"duration_ms"`
	CreatedAt  string        `json:"created_at"`
}

// RecordRefresh journals a completed dashboard build. Journal writes are
// fire-and-forget: a failed insert never fails the build that produced it.
func (d *DB) RecordRefresh(id, asOf string, parameters int, duration time.Duration) {
	d.sql.Exec(
		"INSERT OR REPLACE INTO refresh_journal (id, as_of, parameters, duration_ms, created_at) VALUES (?,?,?,?,?)",
		id, asOf, parameters, duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339),
	)
}

// RecentRefreshes lists the latest journal entries, newest first.
func (d *DB) RecentRefreshes(limit int) []RefreshRecord {
	rows, err := d.sql.Query(
		"SELECT id, as_of, parameters, duration_ms, created_at FROM refresh_journal ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []RefreshRecord
	for rows.Next() {
		var r RefreshRecord
		var ms int64
		if err := rows.Scan(&r.ID, &r.AsOf, &r.Parameters, &ms, &r.CreatedAt); err != nil {
			continue
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out
}
