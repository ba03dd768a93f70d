// Package report persists completed swing reports in sqlite.
//
// The schema is managed by embedded golang-migrate migrations and
// applied on open. List returns summaries without the report body;
// Get inflates the full analysis report from its JSON column.
package report

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fairway-data/swing.report/internal/analysis"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// Record is one persisted swing report. The summary columns are
// denormalized from the report body so List never has to unmarshal it.
type Record struct {
	ReportID   string           `json:"report_id"`
	CreatedAt  int64            `json:"created_at"`
	Source     string           `json:"source,omitempty"`
	Handedness string           `json:"handedness"`
	Club       string           `json:"club"`
	Profile    string           `json:"profile"`
	SkillLevel string           `json:"skill_level"`
	Aggregate  int              `json:"aggregate"`
	FrameCount int              `json:"frame_count"`
	FPS        float64          `json:"fps"`
	Report     *analysis.Report `json:"report,omitempty"`
}

// NewRecord wraps an analysis report for persistence. source names
// where the sequence came from (file path, "api", ...).
func NewRecord(r *analysis.Report, source string) *Record {
	return &Record{
		Source:     source,
		Handedness: string(r.Handedness),
		Club:       string(r.Club),
		Profile:    r.Profile,
		SkillLevel: r.SkillLevel,
		Aggregate:  r.Scores.Aggregate,
		FrameCount: r.FrameCount,
		FPS:        r.FPS,
		Report:     r,
	}
}

// Store provides persistence for swing reports.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the report database at path and
// applies pending migrations. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for callers that share the
// connection (migration tooling, tests).
func (s *Store) DB() *sql.DB { return s.db }

// migrateUp applies all pending embedded migrations.
func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// Insert persists a new report. An empty ReportID gets a generated
// UUID; a zero CreatedAt gets the current time.
func (s *Store) Insert(rec *Record) error {
	if rec.Report == nil {
		return fmt.Errorf("insert report: record has no report body")
	}
	if rec.ReportID == "" {
		rec.ReportID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	body, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	err = retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO swing_reports (
				report_id, created_at, source, handedness, club,
				profile, skill_level, aggregate, frame_count, fps, report_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ReportID, rec.CreatedAt, rec.Source, rec.Handedness, rec.Club,
			rec.Profile, rec.SkillLevel, rec.Aggregate, rec.FrameCount, rec.FPS,
			string(body),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting report %s: %w", rec.ReportID, err)
	}
	return nil
}

// List returns report summaries ordered by creation time descending.
// The Report field is left nil.
func (s *Store) List() ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT report_id, created_at, source, handedness, club,
		       profile, skill_level, aggregate, frame_count, fps
		FROM swing_reports
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		var r Record
		var source sql.NullString
		if err := rows.Scan(
			&r.ReportID, &r.CreatedAt, &source, &r.Handedness, &r.Club,
			&r.Profile, &r.SkillLevel, &r.Aggregate, &r.FrameCount, &r.FPS,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Source = source.String
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}

// Get returns one report with its full body.
func (s *Store) Get(reportID string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT report_id, created_at, source, handedness, club,
		       profile, skill_level, aggregate, frame_count, fps, report_json
		FROM swing_reports
		WHERE report_id = ?`, reportID)

	var r Record
	var source sql.NullString
	var body string
	err := row.Scan(
		&r.ReportID, &r.CreatedAt, &source, &r.Handedness, &r.Club,
		&r.Profile, &r.SkillLevel, &r.Aggregate, &r.FrameCount, &r.FPS,
		&body,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", reportID, ErrNotFound)
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	r.Source = source.String

	var rep analysis.Report
	if err := json.Unmarshal([]byte(body), &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", reportID, err)
	}
	r.Report = &rep
	return &r, nil
}

// Delete removes one report.
func (s *Store) Delete(reportID string) error {
	var res sql.Result
	err := retryOnBusy(func() error {
		var err error
		res, err = s.db.Exec(`DELETE FROM swing_reports WHERE report_id = ?`, reportID)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", reportID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", reportID, ErrNotFound)
	}
	return nil
}

// Busy-retry policy for writes contending on the sqlite lock.
const (
	maxBusyRetries = 5
	busyRetryDelay = 50 * time.Millisecond
)

// retryOnBusy retries fn while it fails with a sqlite busy/locked
// error, backing off linearly. Other errors fail immediately.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		if err = fn(); err == nil || !isSQLiteBusy(err) {
			return err
		}
		time.Sleep(busyRetryDelay * time.Duration(attempt+1))
	}
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
