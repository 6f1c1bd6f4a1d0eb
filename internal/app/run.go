package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gospodinfran/weather-cli/internal/config"
	"github.com/gospodinfran/weather-cli/internal/db"
	"github.com/gospodinfran/weather-cli/internal/history"
	"github.com/gospodinfran/weather-cli/internal/migrate"
	"github.com/gospodinfran/weather-cli/internal/mqtt"
	"github.com/gospodinfran/weather-cli/internal/prompt"
	"github.com/gospodinfran/weather-cli/internal/report"
	"github.com/gospodinfran/weather-cli/internal/weather"
)

// Fetcher returns the current weather for a location as typed by the user.
type Fetcher interface {
	Current(ctx context.Context, location string) (weather.Reading, error)
}

// Sink receives every report after it has been printed.
type Sink interface {
	Name() string
	Record(ctx context.Context, rep weather.Report) error
}

// Pipeline is one prompt → request → decode → format cycle.
type Pipeline struct {
	In      io.Reader
	Out     io.Writer
	Weather Fetcher
	Sinks   []Sink
	Logger  *slog.Logger
	Now     func() time.Time
}

// Execute runs the cycle once. It returns a *prompt.InputError when the location
// cannot be read and a weather.OperationError when the lookup fails; in both
// cases nothing but the prompt has been written to Out. Sink failures are logged
// and do not affect the result.
func (p *Pipeline) Execute(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	location, err := prompt.ReadLocation(ctx, p.In, p.Out)
	if err != nil {
		return err
	}

	reading, err := p.Weather.Current(ctx, location)
	if err != nil {
		return err
	}

	msg := report.Format(location, reading)
	if _, err := fmt.Fprintln(p.Out, msg); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	rep := weather.Report{
		Location:  location,
		Reading:   reading,
		Message:   msg,
		FetchedAt: now(),
	}
	for _, s := range p.Sinks {
		if err := s.Record(ctx, rep); err != nil {
			logger.Warn("report sink failed", "sink", s.Name(), "error", err)
			continue
		}
		logger.Debug("report recorded", "sink", s.Name())
	}
	return nil
}

// Run wires the pipeline from cfg and executes it against in and out.
func Run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"weatherAPIHost", cfg.WeatherAPIHost,
		"historyEnabled", cfg.HistoryEnabled(),
		"mqttEnabled", cfg.MQTTEnabled(),
	)

	var sinks []Sink

	if cfg.HistoryEnabled() {
		conn, err := db.Open(cfg, logger)
		if err != nil {
			logger.Warn("report journal unavailable", "error", err)
		} else {
			defer func() {
				if err := db.Close(conn); err != nil {
					logger.Error("db close", "error", err)
				}
			}()
			if _, err := migrate.Run(ctx, conn, logger); err != nil {
				logger.Warn("report journal migration failed", "error", err)
			} else {
				sinks = append(sinks, history.Sink{Repo: history.NewRepository(conn), Logger: logger})
			}
		}
	}

	if cfg.MQTTEnabled() {
		pub := mqtt.NewPublisher(cfg, logger)
		defer pub.Disconnect()
		sinks = append(sinks, pub)
	}

	p := &Pipeline{
		In:      in,
		Out:     out,
		Weather: weather.NewClient(cfg.WeatherAPIHost, cfg.WeatherAPIKey, logger),
		Sinks:   sinks,
		Logger:  logger,
	}
	return p.Execute(ctx)
}
