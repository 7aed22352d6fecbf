package db

import (
	"database/sql"
	"testing"
	"time"

	"metric-diary/internal/analytics"
	"metric-diary/internal/provider"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_CreateParameterDerivesAttributes(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	p, err := d.CreateParameter("Good Mood pos def 2")
	if err != nil {
		t.Fatal(err)
	}
	if p.Key != "good_mood_pos_def_2" {
		t.Errorf("key = %q", p.Key)
	}
	if p.Polarity != analytics.PolarityPositive {
		t.Errorf("polarity = %s, want positive", p.Polarity)
	}
	if p.DefaultValue == nil || *p.DefaultValue != 2 {
		t.Errorf("default = %v, want 2", p.DefaultValue)
	}
	if !p.Active || p.Position != 0 {
		t.Errorf("active/position: %+v", p)
	}

	// Second parameter appends to the registry order.
	q, err := d.CreateParameter("Fatigue")
	if err != nil {
		t.Fatal(err)
	}
	if q.Position != 1 {
		t.Errorf("position = %d, want 1", q.Position)
	}
	if q.Polarity != analytics.PolarityNegative || q.DefaultValue != nil {
		t.Errorf("plain title attributes: %+v", q)
	}

	// Duplicate keys are rejected.
	if _, err := d.CreateParameter("Fatigue!"); err == nil {
		t.Error("duplicate key accepted")
	}
}

func TestDB_RenameRederivesAndCascades(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if _, err := d.CreateParameter("Mood"); err != nil {
		t.Fatal(err)
	}
	if err := d.PutSelection("2024-03-10", "mood", 3, analytics.SyncSynced); err != nil {
		t.Fatal(err)
	}
	d.SetSeries("mood", "2024-03-10", []provider.SeriesPoint{{Date: "2024-03-09", Value: fptr(2)}})

	p, err := d.RenameParameter("mood", "Mood pos")
	if err != nil {
		t.Fatal(err)
	}
	if p.Key != "mood_pos" || p.Polarity != analytics.PolarityPositive {
		t.Fatalf("renamed: %+v", p)
	}

	// Selections and the series cache follow the key.
	sels, err := d.SelectionsFor("2024-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if _, has := sels["mood"]; has {
		t.Error("old key still holds a selection")
	}
	if sel, has := sels["mood_pos"]; !has || sel.Value != 3 {
		t.Errorf("selection did not follow the rename: %+v", sels)
	}
	if _, ok := d.GetSeries("mood_pos", "2024-03-10"); !ok {
		t.Error("series cache did not follow the rename")
	}

	if _, err := d.GetParameter("mood"); err == nil {
		t.Error("old key still resolves")
	}
}

func TestDB_RenameCollision(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.CreateParameter("Mood")
	d.CreateParameter("Fatigue")

	if _, err := d.RenameParameter("fatigue", "Mood"); err == nil {
		t.Error("rename onto an existing key accepted")
	}
}

func TestDB_ArchiveHidesFromActiveList(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.CreateParameter("Mood")
	d.CreateParameter("Fatigue")

	if err := d.SetParameterActive("mood", false); err != nil {
		t.Fatal(err)
	}

	active, err := d.ActiveParameters()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].Key != "fatigue" {
		t.Fatalf("active: %+v", active)
	}

	all, err := d.AllParameters()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("all: %+v", all)
	}

	if err := d.SetParameterActive("nope", false); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestDB_Description(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.CreateParameter("Mood")
	if err := d.SetDescription("mood", "overall mood, 0 flat to 4 great"); err != nil {
		t.Fatal(err)
	}
	desc, err := d.Description("mood")
	if err != nil {
		t.Fatal(err)
	}
	if desc != "overall mood, 0 flat to 4 great" {
		t.Errorf("description = %q", desc)
	}

	if err := d.SetDescription("nope", "x"); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestDB_SelectionsRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.CreateParameter("Mood")
	if err := d.PutSelection("2024-03-10", "mood", 2, analytics.SyncPending); err != nil {
		t.Fatal(err)
	}
	// Upsert replaces, including the sync state.
	if err := d.PutSelection("2024-03-10", "mood", 2, analytics.SyncSynced); err != nil {
		t.Fatal(err)
	}

	sels, err := d.SelectionsFor("2024-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if sel := sels["mood"]; sel.Value != 2 || sel.Sync != analytics.SyncSynced {
		t.Fatalf("selection: %+v", sel)
	}

	// Other dates are isolated.
	other, _ := d.SelectionsFor("2024-03-11")
	if len(other) != 0 {
		t.Fatalf("date bleed: %+v", other)
	}

	if err := d.DeleteSelection("2024-03-10", "mood"); err != nil {
		t.Fatal(err)
	}
	sels, _ = d.SelectionsFor("2024-03-10")
	if len(sels) != 0 {
		t.Fatalf("after delete: %+v", sels)
	}

	// Deleting again is a no-op, not an error.
	if err := d.DeleteSelection("2024-03-10", "mood"); err != nil {
		t.Fatal(err)
	}
}

func TestDB_PendingSelections(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.CreateParameter("Mood")
	d.CreateParameter("Fatigue")
	d.PutSelection("2024-03-10", "mood", 1, analytics.SyncSynced)
	d.PutSelection("2024-03-10", "fatigue", 4, analytics.SyncFailed)

	pending, err := d.PendingSelections()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ParamKey != "fatigue" || pending[0].Sync != analytics.SyncFailed {
		t.Fatalf("pending: %+v", pending)
	}
}

func TestDB_SettingsRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	// An empty table yields the defaults.
	s := d.LoadSettings()
	if !s.ChartsVisible || !s.PredictionsVisible || s.FocusMode || s.Sort.Active() {
		t.Fatalf("defaults: %+v", s)
	}

	s.ChartsVisible = false
	s.FocusMode = true
	s.Filter = "fat -bad"
	s.MinChartDate = "2024-01-15"
	s.Sort = analytics.SortState{Key: analytics.SortSum, Direction: analytics.Descending}
	if err := d.SaveSettings(s); err != nil {
		t.Fatal(err)
	}

	got := d.LoadSettings()
	if got != s {
		t.Fatalf("round trip: %+v != %+v", got, s)
	}
}

func TestDB_SettingsMalformedSortFallsBack(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.sql.Exec("INSERT INTO settings (key, value) VALUES (?, ?)", "diary_sort", "not json")
	if s := d.LoadSettings(); s.Sort.Active() {
		t.Fatalf("malformed sort accepted: %+v", s.Sort)
	}

	d.sql.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", "diary_sort", `{"type":"bogus","direction":1}`)
	if s := d.LoadSettings(); s.Sort.Active() {
		t.Fatalf("unknown sort key accepted: %+v", s.Sort)
	}
}

func fptr(v float64) *float64 { return &v }

func TestDB_SeriesCacheRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if _, ok := d.GetSeries("mood", "2024-03-10"); ok {
		t.Fatal("hit on empty cache")
	}

	points := []provider.SeriesPoint{
		{Date: "2024-03-08", Value: fptr(1)},
		{Date: "2024-03-09"}, // gap day
		{Date: "2024-03-10", Value: fptr(3)},
	}
	d.SetSeries("mood", "2024-03-10", points)

	got, ok := d.GetSeries("mood", "2024-03-10")
	if !ok || len(got) != 3 {
		t.Fatalf("get: ok=%v len=%d", ok, len(got))
	}
	if got[0].Value == nil || *got[0].Value != 1 {
		t.Errorf("first point: %+v", got[0])
	}
	if got[1].Value != nil {
		t.Errorf("gap day came back non-null: %v", *got[1].Value)
	}
	if got[2].Value == nil || *got[2].Value != 3 {
		t.Errorf("last point: %+v", got[2])
	}

	// A different as-of date is a separate snapshot.
	if _, ok := d.GetSeries("mood", "2024-03-11"); ok {
		t.Error("as-of dates bleed")
	}

	// Re-set replaces the snapshot wholesale.
	d.SetSeries("mood", "2024-03-10", points[:1])
	got, _ = d.GetSeries("mood", "2024-03-10")
	if len(got) != 1 {
		t.Errorf("replace: len = %d, want 1", len(got))
	}
}

func TestDB_SeriesCacheTTL(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.SetSeries("mood", "2024-03-10", []provider.SeriesPoint{{Date: "2024-03-09", Value: fptr(2)}})

	// Age the meta entry past the TTL.
	stale := time.Now().Add(-25 * time.Hour).UTC().Format(time.RFC3339)
	d.sql.Exec("UPDATE series_cache_meta SET updated_at=?", stale)

	if _, ok := d.GetSeries("mood", "2024-03-10"); ok {
		t.Error("stale cache served")
	}

	d.CleanupStaleSeries()
	var n int
	d.sql.QueryRow("SELECT COUNT(*) FROM series_cache").Scan(&n)
	if n != 0 {
		t.Errorf("cleanup left %d rows", n)
	}
}

func TestDB_RefreshJournal(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.RecordRefresh("r-1", "2024-03-10", 7, 120*time.Millisecond)
	recs := d.RecentRefreshes(10)
	if len(recs) != 1 {
		t.Fatalf("records: %+v", recs)
	}
	r := recs[0]
	if r.ID != "r-1" || r.AsOf != "2024-03-10" || r.Parameters != 7 || r.Duration != 120*time.Millisecond {
		t.Errorf("record: %+v", r)
	}
}
