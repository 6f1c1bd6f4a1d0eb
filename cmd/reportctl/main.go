package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gospodinfran/weather-cli/internal/config"
	"github.com/gospodinfran/weather-cli/internal/db"
	"github.com/gospodinfran/weather-cli/internal/history"
	"github.com/gospodinfran/weather-cli/internal/logging"
	"github.com/gospodinfran/weather-cli/internal/migrate"
)

var version = "dev"
var appName = "reportctl"

const defaultHistoryLimit = 20

const usage = `usage: %s <command>
  migrate                    apply pending journal migrations
  history [limit] [location] print the newest reports, optionally for one location
  count                      print the number of stored reports
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.HistoryEnabled() {
		fmt.Fprintln(os.Stderr, "config error: HISTORY_SQLITE_PATH or SQLITE_DSN must be set")
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	conn, err := db.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}

	err = run(context.Background(), conn, logger, os.Stdout, os.Args[1:])
	if closeErr := db.Close(conn); closeErr != nil {
		slog.Error("db close", "err", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conn *sql.DB, logger *slog.Logger, out io.Writer, args []string) error {
	switch args[0] {
	case "migrate":
		applied, err := migrate.Run(ctx, conn, logger)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "journal is up to date")
			return nil
		}
		for _, m := range applied {
			fmt.Fprintf(out, "applied %s_%s\n", m.Version, m.Name)
		}
		return nil

	case "history":
		limit := defaultHistoryLimit
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid limit %q", args[1])
			}
			limit = n
		}
		if _, err := migrate.Run(ctx, conn, logger); err != nil {
			return err
		}
		repo := history.NewRepository(conn)
		var entries []history.Entry
		var err error
		if len(args) > 2 {
			entries, err = repo.ReportsForLocation(ctx, strings.Join(args[2:], " "), limit)
		} else {
			entries, err = repo.LatestReports(ctx, limit)
		}
		if err != nil {
			return err
		}
		return printEntries(out, entries)

	case "count":
		if _, err := migrate.Run(ctx, conn, logger); err != nil {
			return err
		}
		n, err := history.NewRepository(conn).CountReports(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil

	default:
		return fmt.Errorf("unknown command")
	}
}

func printEntries(out io.Writer, entries []history.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFETCHED\tLOCATION\tTEMP\tFEELS\tCONDITION")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%g\t%s\n",
			e.ID,
			e.FetchedAt.UTC().Format(time.RFC3339),
			strings.TrimSpace(e.Location),
			e.Reading.TemperatureC,
			e.Reading.FeelsLikeC,
			e.Reading.Condition.Text,
		)
	}
	return w.Flush()
}
