package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gospodinfran/weather-cli/internal/history"
	"github.com/gospodinfran/weather-cli/internal/migrate"
	"github.com/gospodinfran/weather-cli/internal/weather"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_Migrate(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := run(ctx, conn, quietLogger(), &out, []string{"migrate"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out.String(), "applied 0001_reports") {
		t.Errorf("output = %q, want applied 0001_reports", out.String())
	}

	out.Reset()
	if err := run(ctx, conn, quietLogger(), &out, []string{"migrate"}); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if out.String() != "journal is up to date\n" {
		t.Errorf("second migrate output = %q", out.String())
	}
}

func TestRun_HistoryAndCount(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	if _, err := migrate.Run(ctx, conn, quietLogger()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := history.NewRepository(conn)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, loc := range []string{"Rome\n", "Vienna\n", "rome"} {
		_, err := repo.InsertReport(ctx, weather.Report{
			Location:  loc,
			Reading:   weather.Reading{TemperatureC: 12.5, FeelsLikeC: 11, Condition: weather.Condition{Text: "Overcast"}},
			Message:   "msg",
			FetchedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("InsertReport: %v", err)
		}
	}

	var out bytes.Buffer
	if err := run(ctx, conn, quietLogger(), &out, []string{"count"}); err != nil {
		t.Fatalf("count: %v", err)
	}
	if out.String() != "3\n" {
		t.Errorf("count output = %q, want 3", out.String())
	}

	out.Reset()
	if err := run(ctx, conn, quietLogger(), &out, []string{"history", "2"}); err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("history printed %d lines, want header + 2:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "rome") || !strings.Contains(lines[2], "Vienna") {
		t.Errorf("history output not newest first:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "12.5") || !strings.Contains(lines[1], "Overcast") {
		t.Errorf("history row = %q, want reading fields", lines[1])
	}

	out.Reset()
	if err := run(ctx, conn, quietLogger(), &out, []string{"history", "10", "ROME"}); err != nil {
		t.Fatalf("history for location: %v", err)
	}
	if n := strings.Count(out.String(), "\n"); n != 3 {
		t.Errorf("history ROME printed %d lines, want header + 2:\n%s", n, out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()

	tests := [][]string{
		{"history", "zero"},
		{"history", "-1"},
		{"drop"},
	}
	for _, args := range tests {
		if err := run(ctx, conn, quietLogger(), io.Discard, args); err == nil {
			t.Errorf("run(%v) error = nil, want non-nil", args)
		}
	}
}
