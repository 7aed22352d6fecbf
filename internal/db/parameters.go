package db

import (
	"database/sql"
	"fmt"

	"metric-diary/internal/analytics"
)

// CreateParameter registers a new parameter from a display title. The key
// is slugified from the title; polarity and the default-value hint are
// derived once here and stored, never re-derived at render time.
func (d *DB) CreateParameter(title string) (analytics.Parameter, error) {
	key := analytics.SlugifyKey(title)
	if key == "" {
		return analytics.Parameter{}, fmt.Errorf("title %q yields an empty key", title)
	}

	var exists int
	d.sql.QueryRow("SELECT COUNT(*) FROM parameters WHERE key=?", key).Scan(&exists)
	if exists > 0 {
		return analytics.Parameter{}, fmt.Errorf("parameter %q already exists", key)
	}

	pos := 0
	d.sql.QueryRow("SELECT COALESCE(MAX(position)+1, 0) FROM parameters").Scan(&pos)

	p := analytics.Parameter{
		Key:      key,
		Title:    title,
		Polarity: analytics.DerivePolarity(title),
		Active:   true,
		Position: pos,
	}
	if v, ok := analytics.ParseDefaultHint(title); ok {
		p.DefaultValue = &v
	}

	_, err := d.sql.Exec(
		"INSERT INTO parameters (key, title, polarity, default_value, description, active, position) VALUES (?,?,?,?,?,?,?)",
		p.Key, p.Title, string(p.Polarity), nullableInt(p.DefaultValue), "", boolInt(p.Active), p.Position,
	)
	if err != nil {
		return analytics.Parameter{}, fmt.Errorf("insert parameter: %w", err)
	}
	return p, nil
}

// RenameParameter changes a parameter's title. The key follows the new
// title, and polarity and the default hint are re-derived, so a rename can
// flip the color scale or add a default. Selections and cached series move
// with the key.
func (d *DB) RenameParameter(oldKey, newTitle string) (analytics.Parameter, error) {
	p, err := d.GetParameter(oldKey)
	if err != nil {
		return analytics.Parameter{}, err
	}

	newKey := analytics.SlugifyKey(newTitle)
	if newKey == "" {
		return analytics.Parameter{}, fmt.Errorf("title %q yields an empty key", newTitle)
	}
	if newKey != oldKey {
		var exists int
		d.sql.QueryRow("SELECT COUNT(*) FROM parameters WHERE key=?", newKey).Scan(&exists)
		if exists > 0 {
			return analytics.Parameter{}, fmt.Errorf("parameter %q already exists", newKey)
		}
	}

	p.Key = newKey
	p.Title = newTitle
	p.Polarity = analytics.DerivePolarity(newTitle)
	p.DefaultValue = nil
	if v, ok := analytics.ParseDefaultHint(newTitle); ok {
		p.DefaultValue = &v
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return analytics.Parameter{}, fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE parameters SET key=?, title=?, polarity=?, default_value=? WHERE key=?",
		newKey, newTitle, string(p.Polarity), nullableInt(p.DefaultValue), oldKey,
	); err != nil {
		return analytics.Parameter{}, fmt.Errorf("rename parameter: %w", err)
	}
	if newKey != oldKey {
		tx.Exec("UPDATE selections SET param_key=? WHERE param_key=?", newKey, oldKey)
		tx.Exec("UPDATE series_cache SET param_key=? WHERE param_key=?", newKey, oldKey)
		tx.Exec("UPDATE series_cache_meta SET param_key=? WHERE param_key=?", newKey, oldKey)
	}
	if err := tx.Commit(); err != nil {
		return analytics.Parameter{}, fmt.Errorf("commit rename: %w", err)
	}
	return p, nil
}

// GetParameter loads one parameter by key.
func (d *DB) GetParameter(key string) (analytics.Parameter, error) {
	row := d.sql.QueryRow(
		"SELECT key, title, polarity, default_value, description, active, position FROM parameters WHERE key=?",
		key,
	)
	p, err := scanParameter(row)
	if err == sql.ErrNoRows {
		return analytics.Parameter{}, fmt.Errorf("parameter %q not found", key)
	}
	return p, err
}

// ActiveParameters returns all active parameters in registry order.
func (d *DB) ActiveParameters() ([]analytics.Parameter, error) {
	return d.listParameters("SELECT key, title, polarity, default_value, description, active, position FROM parameters WHERE active=1 ORDER BY position")
}

// AllParameters returns every parameter, archived ones included.
func (d *DB) AllParameters() ([]analytics.Parameter, error) {
	return d.listParameters("SELECT key, title, polarity, default_value, description, active, position FROM parameters ORDER BY position")
}

func (d *DB) listParameters(query string) ([]analytics.Parameter, error) {
	rows, err := d.sql.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	defer rows.Close()

	var out []analytics.Parameter
	for rows.Next() {
		p, err := scanParameter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetParameterActive archives or restores a parameter. Archived parameters
// keep their history and selections but drop off the dashboard.
func (d *DB) SetParameterActive(key string, active bool) error {
	res, err := d.sql.Exec("UPDATE parameters SET active=? WHERE key=?", boolInt(active), key)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("parameter %q not found", key)
	}
	return nil
}

// Description returns a parameter's free-text description.
func (d *DB) Description(key string) (string, error) {
	var desc string
	err := d.sql.QueryRow("SELECT description FROM parameters WHERE key=?", key).Scan(&desc)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("parameter %q not found", key)
	}
	return desc, err
}

// SetDescription replaces a parameter's description.
func (d *DB) SetDescription(key, description string) error {
	res, err := d.sql.Exec("UPDATE parameters SET description=? WHERE key=?", description, key)
	if err != nil {
		return fmt.Errorf("set description: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("parameter %q not found", key)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParameter(row rowScanner) (analytics.Parameter, error) {
	var p analytics.Parameter
	var polarity string
	var def sql.NullInt64
	var active int
	if err := row.Scan(&p.Key, &p.Title, &polarity, &def, &p.Description, &active, &p.Position); err != nil {
		return analytics.Parameter{}, err
	}
	p.Polarity = analytics.Polarity(polarity)
	if def.Valid {
		v := int(def.Int64)
		p.DefaultValue = &v
	}
	p.Active = active != 0
	return p, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
