package db

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gospodinfran/weather-cli/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{SQLiteDSN: "file::memory:", HistoryPath: filepath.Join(dir, "x.db")},
			want: "file::memory:",
		},
		{
			name: "plain path",
			cfg:  config.Config{HistoryPath: filepath.Join(dir, "reports.db")},
			want: "file:" + filepath.Join(dir, "reports.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file uri with params",
			cfg:  config.Config{HistoryPath: "file:reports.db?mode=rwc"},
			want: "file:reports.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDSN_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal", "reports.db")

	if _, err := buildDSN(config.Config{HistoryPath: path}); err != nil {
		t.Fatalf("buildDSN() error = %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(path)); err != nil || !fi.IsDir() {
		t.Fatalf("directory %s not created: %v", filepath.Dir(path), err)
	}
}

func TestBuildDSN_NothingConfigured(t *testing.T) {
	if _, err := buildDSN(config.Config{}); err == nil {
		t.Fatal("buildDSN() error = nil, want non-nil")
	}
}

func TestOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, logSQL := range []bool{false, true} {
		name := "plain"
		if logSQL {
			name = "logging connector"
		}
		t.Run(name, func(t *testing.T) {
			cfg := config.Config{
				HistoryPath:        filepath.Join(t.TempDir(), "reports.db"),
				SQLiteDriver:       "sqlite3",
				SQLiteMaxOpenConns: 1,
				SQLiteMaxIdleConns: 1,
				SQLiteLogSQL:       logSQL,
			}
			conn, err := Open(cfg, logger)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer func() {
				if err := Close(conn); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			var mode string
			if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
				t.Fatalf("journal_mode: %v", err)
			}
			if !strings.EqualFold(mode, "wal") {
				t.Errorf("journal_mode = %q, want wal", mode)
			}
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Config{HistoryPath: filepath.Join(t.TempDir(), "r.db"), SQLiteDriver: "nope"}
	if _, err := Open(cfg, nil); err == nil {
		t.Fatal("Open() with unknown driver error = nil, want non-nil")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v, want nil", err)
	}
}
