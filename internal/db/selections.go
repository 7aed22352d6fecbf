package db

import (
	"fmt"
	"time"

	"metric-diary/internal/analytics"
)

// SelectionsFor returns the local selection mirror for one day, keyed by
// parameter.
func (d *DB) SelectionsFor(date string) (map[string]analytics.Selection, error) {
	rows, err := d.sql.Query("SELECT param_key, value, sync_state FROM selections WHERE date=?", date)
	if err != nil {
		return nil, fmt.Errorf("load selections: %w", err)
	}
	defer rows.Close()

	out := map[string]analytics.Selection{}
	for rows.Next() {
		var key, state string
		var value int
		if err := rows.Scan(&key, &value, &state); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		out[key] = analytics.Selection{Value: value, Sync: analytics.SyncState(state)}
	}
	return out, rows.Err()
}

// PutSelection upserts one day's selection for a parameter, including its
// sync state. Last writer wins.
func (d *DB) PutSelection(date, key string, value int, sync analytics.SyncState) error {
	_, err := d.sql.Exec(
		"INSERT OR REPLACE INTO selections (date, param_key, value, sync_state, updated_at) VALUES (?,?,?,?,?)",
		date, key, value, string(sync), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put selection: %w", err)
	}
	return nil
}

// DeleteSelection removes one day's selection for a parameter. Deleting a
// selection that does not exist is a no-op.
func (d *DB) DeleteSelection(date, key string) error {
	if _, err := d.sql.Exec("DELETE FROM selections WHERE date=? AND param_key=?", date, key); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return nil
}

// PendingSelections lists selections whose last external write did not
// confirm, oldest first. Feed for a future resync pass.
func (d *DB) PendingSelections() ([]PendingSelection, error) {
	rows, err := d.sql.Query(
		"SELECT date, param_key, value, sync_state FROM selections WHERE sync_state != ? ORDER BY updated_at",
		string(analytics.SyncSynced),
	)
	if err != nil {
		return nil, fmt.Errorf("load pending selections: %w", err)
	}
	defer rows.Close()

	var out []PendingSelection
	for rows.Next() {
		var p PendingSelection
		var state string
		if err := rows.Scan(&p.Date, &p.ParamKey, &p.Value, &state); err != nil {
			return nil, fmt.Errorf("scan pending selection: %w", err)
		}
		p.Sync = analytics.SyncState(state)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PendingSelection is one unconfirmed selection write.
type PendingSelection struct {
	Date     string              `json:"date"`
	ParamKey string              `json:"parameter"`
	Value    int                 `json:"value"`
	Sync     analytics.SyncState `json:"sync"`
}
