package db

import (
	"encoding/json"
	"strconv"

	"metric-diary/internal/analytics"
)

// Settings keys. The names are kept from the browser-era localStorage
// entries so an exported settings table reads the same way the old client
// state did.
const (
	settingChartsVisible      = "diary_charts_visible"
	settingPredictionsVisible = "diary_predictions_visible"
	settingFocusMode          = "diary_focus_mode"
	settingFilter             = "diary_param_filter"
	settingMinChartDate       = "diary_charts_min_date"
	settingSort               = "diary_sort"
)

// LoadSettings reads the persisted dashboard settings. Missing or
// malformed entries fall back to their defaults, so a partial table never
// fails a load.
func (d *DB) LoadSettings() analytics.Settings {
	s := analytics.DefaultSettings()

	rows, err := d.sql.Query("SELECT key, value FROM settings")
	if err != nil {
		return s
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if v, ok := m[settingChartsVisible]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.ChartsVisible = b
		}
	}
	if v, ok := m[settingPredictionsVisible]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.PredictionsVisible = b
		}
	}
	if v, ok := m[settingFocusMode]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.FocusMode = b
		}
	}
	if v, ok := m[settingFilter]; ok {
		s.Filter = v
	}
	if v, ok := m[settingMinChartDate]; ok {
		s.MinChartDate = v
	}
	if v, ok := m[settingSort]; ok {
		var sort analytics.SortState
		if err := json.Unmarshal([]byte(v), &sort); err == nil && (sort.Key == analytics.SortNone || analytics.ValidSortKey(string(sort.Key))) {
			s.Sort = sort
		}
	}
	return s
}

// SaveSettings writes the full settings snapshot. Single-user, last
// writer wins.
func (d *DB) SaveSettings(s analytics.Settings) error {
	sortJSON, err := json.Marshal(s.Sort)
	if err != nil {
		return err
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := map[string]string{
		settingChartsVisible:      strconv.FormatBool(s.ChartsVisible),
		settingPredictionsVisible: strconv.FormatBool(s.PredictionsVisible),
		settingFocusMode:          strconv.FormatBool(s.FocusMode),
		settingFilter:             s.Filter,
		settingMinChartDate:       s.MinChartDate,
		settingSort:               string(sortJSON),
	}
	for k, v := range pairs {
		if _, err := tx.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?,?)", k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}
