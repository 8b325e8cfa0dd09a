// Package storage archives scrape runs: which strategy won, how many
// records survived cleaning, where the artifacts were written, and
// the cleaned records themselves so a summary can be rebuilt without
// re-scraping.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"coaltracker/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  strategy TEXT NOT NULL,
  records INTEGER NOT NULL,
  durationMs REAL NOT NULL,
  csvPath TEXT,
  xlsxPath TEXT,
  summaryPath TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  plantName TEXT,
  countryArea TEXT,
  status TEXT,
  capacityMw REAL,
  fieldsJson TEXT NOT NULL,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_records_runId ON records(runId);
CREATE INDEX IF NOT EXISTS idx_records_country ON records(countryArea);
`
	_, err := d.conn.Exec(schema)
	return err
}

type RunRow struct {
	ID          int
	TraceID     string
	Strategy    string
	Records     int
	DurationMs  float64
	CSVPath     string
	XLSXPath    string
	SummaryPath string
	CreatedAt   string
}

func (d *DB) InsertRun(traceID, strategy string, records int, durationMs float64, csvPath, xlsxPath, summaryPath string) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO runs (traceId, strategy, records, durationMs, csvPath, xlsxPath, summaryPath)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, traceID, strategy, records, durationMs, csvPath, xlsxPath, summaryPath)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// StoreRecords persists the cleaned dataset of one run. The full row
// travels as JSON; a few columns are lifted out for querying.
func (d *DB) StoreRecords(runID int64, data internal.Dataset) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO records (runId, position, plantName, countryArea, status, capacityMw, fieldsJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for position, record := range data {
		fields := map[string]string{}
		for _, field := range internal.Fields {
			if value := record.Get(field); !value.IsMissing() {
				fields[string(field)] = value.Text()
			}
		}
		blob, _ := json.Marshal(fields)

		var capacity any
		if n, ok := record.Get(internal.FieldCapacityMW).Number(); ok {
			capacity = n
		}
		if _, err := stmt.Exec(
			runID, position,
			record.Get(internal.FieldPlantName).Text(),
			record.Get(internal.FieldCountryArea).Text(),
			record.Get(internal.FieldStatus).Text(),
			capacity,
			string(blob),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, strategy, records, durationMs,
       COALESCE(csvPath, ''), COALESCE(xlsxPath, ''), COALESCE(summaryPath, ''), createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Strategy, &row.Records, &row.DurationMs,
			&row.CSVPath, &row.XLSXPath, &row.SummaryPath, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LatestDataset rebuilds the cleaned dataset of the most recent run
// that archived any records. Returns nil when no run did.
func (d *DB) LatestDataset() (internal.Dataset, error) {
	var runID int64
	err := d.conn.QueryRow(`SELECT id FROM runs WHERE records > 0 ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.conn.Query(`SELECT fieldsJson FROM records WHERE runId = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out internal.Dataset
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		fields := map[string]string{}
		if err := json.Unmarshal([]byte(blob), &fields); err != nil {
			continue
		}
		record := internal.Record{}
		for name, text := range fields {
			record[internal.Field(name)] = internal.TextValue(text)
		}
		if !record.Empty() {
			out = append(out, record)
		}
	}
	return out, rows.Err()
}
