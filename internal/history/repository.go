// Package history is the journal of printed reports. It is write-mostly: the
// weather lookup never reads from it.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gospodinfran/weather-cli/internal/weather"
)

//go:embed sql/insert-report.sql
var insertReportSQL string

//go:embed sql/get-latest-reports.sql
var getLatestReportsSQL string

//go:embed sql/get-reports-for-location.sql
var getReportsForLocationSQL string

//go:embed sql/get-reports-count.sql
var getReportsCountSQL string

// Entry is a stored report.
type Entry struct {
	ID int64
	weather.Report
}

// timeLayout has a fixed-width fraction so that fetched_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Repository interface {
	InsertReport(ctx context.Context, r weather.Report) (int64, error)
	LatestReports(ctx context.Context, limit int) ([]Entry, error)
	ReportsForLocation(ctx context.Context, location string, limit int) ([]Entry, error)
	CountReports(ctx context.Context) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repositoryImpl{db: db}
}

// LocationKey is the form used to group reports of the same place: surrounding
// whitespace removed and case-folded.
func LocationKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

func (r *repositoryImpl) InsertReport(ctx context.Context, rep weather.Report) (int64, error) {
	ts := rep.FetchedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := r.db.ExecContext(ctx, insertReportSQL,
		rep.Location,
		LocationKey(rep.Location),
		rep.Reading.TemperatureC,
		rep.Reading.FeelsLikeC,
		rep.Reading.Condition.Text,
		rep.Message,
		ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert report id: %w", err)
	}
	return id, nil
}

func (r *repositoryImpl) LatestReports(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, getLatestReportsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close latest reports rows", "error", err)
		}
	}()
	return scanEntries(rows)
}

func (r *repositoryImpl) ReportsForLocation(ctx context.Context, location string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, getReportsForLocationSQL, LocationKey(location), limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close location reports rows", "error", err)
		}
	}()
	return scanEntries(rows)
}

func (r *repositoryImpl) CountReports(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, getReportsCountSQL).Scan(&n)
	return n, err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(
			&e.ID,
			&e.Location,
			&e.Reading.TemperatureC,
			&e.Reading.FeelsLikeC,
			&e.Reading.Condition.Text,
			&e.Message,
			&ts,
		); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse fetched_at %q: %w", ts, err)
		}
		e.FetchedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

// Sink adapts a Repository to the report sink used by the app.
type Sink struct {
	Repo   Repository
	Logger *slog.Logger
}

func (s Sink) Name() string { return "history" }

func (s Sink) Record(ctx context.Context, rep weather.Report) error {
	id, err := s.Repo.InsertReport(ctx, rep)
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Debug("report journaled", "id", id, "location_key", LocationKey(rep.Location))
	}
	return nil
}
