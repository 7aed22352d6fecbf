package db

import (
	"database/sql"
	"time"

	"metric-diary/internal/provider"
)

// seriesTTL bounds how long a cached series is served without a refetch.
const seriesTTL = 24 * time.Hour

// GetSeries retrieves a cached history series for a parameter and as-of
// date. Returns nil, false when not cached or older than the TTL.
func (d *DB) GetSeries(param, asOf string) ([]provider.SeriesPoint, bool) {
	var updatedAt string
	err := d.sql.QueryRow(
		"SELECT updated_at FROM series_cache_meta WHERE param_key=? AND as_of=?",
		param, asOf,
	).Scan(&updatedAt)
	if err != nil {
		return nil, false
	}

	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil || time.Since(t) > seriesTTL {
		return nil, false
	}

	rows, err := d.sql.Query(
		"SELECT date, value FROM series_cache WHERE param_key=? AND as_of=? ORDER BY date",
		param, asOf,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var points []provider.SeriesPoint
	for rows.Next() {
		var p provider.SeriesPoint
		var v sql.NullFloat64
		if err := rows.Scan(&p.Date, &v); err != nil {
			continue
		}
		if v.Valid {
			val := v.Float64
			p.Value = &val
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}

// SetSeries stores a history series, replacing any prior snapshot for the
// same parameter and as-of date. Null values persist as SQL nulls so gap
// days survive the round trip.
func (d *DB) SetSeries(param, asOf string, points []provider.SeriesPoint) {
	tx, err := d.sql.Begin()
	if err != nil {
		return
	}
	defer tx.Rollback()

	tx.Exec("DELETE FROM series_cache WHERE param_key=? AND as_of=?", param, asOf)

	stmt, err := tx.Prepare("INSERT INTO series_cache (param_key, as_of, date, value) VALUES (?,?,?,?)")
	if err != nil {
		return
	}
	defer stmt.Close()

	for _, p := range points {
		if p.Value == nil {
			stmt.Exec(param, asOf, p.Date, nil)
		} else {
			stmt.Exec(param, asOf, p.Date, *p.Value)
		}
	}

	tx.Exec(
		"INSERT OR REPLACE INTO series_cache_meta (param_key, as_of, updated_at) VALUES (?,?,?)",
		param, asOf, time.Now().UTC().Format(time.RFC3339),
	)

	tx.Commit()
}

// CleanupStaleSeries drops cached series whose meta has not been refreshed
// within the TTL. Called on startup to keep the database bounded.
func (d *DB) CleanupStaleSeries() {
	cutoff := time.Now().Add(-seriesTTL).UTC().Format(time.RFC3339)
	d.sql.Exec("DELETE FROM series_cache_meta WHERE updated_at < ?", cutoff)
	d.sql.Exec("DELETE FROM series_cache WHERE NOT EXISTS (SELECT 1 FROM series_cache_meta m WHERE m.param_key = series_cache.param_key AND m.as_of = series_cache.as_of)")
}
