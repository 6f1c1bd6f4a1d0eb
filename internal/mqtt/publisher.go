package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gospodinfran/weather-cli/internal/config"
	"github.com/gospodinfran/weather-cli/internal/weather"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = byte(1)
	publishTimeout = 5 * time.Second
	poll           = 200 * time.Millisecond
)

var ErrStopped = errors.New("mqtt publisher stopped")

// ReportMessage is the JSON payload published for every printed report.
type ReportMessage struct {
	Location     string    `json:"location"`
	TemperatureC float64   `json:"temperature_c"`
	FeelsLikeC   float64   `json:"feelslike_c"`
	Condition    string    `json:"condition"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// pahoClient is the part of mqtt.Client the publisher uses.
type pahoClient interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
}

// Publisher is a report sink that publishes each report, retained, to
// <prefix>/<location slug>. It connects on first use.
type Publisher struct {
	client         pahoClient
	cfg            config.Config
	logger         *slog.Logger
	mu             sync.RWMutex
	connected      bool
	connectTimeout time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		cfg:            cfg,
		logger:         logger,
		connectTimeout: cfg.MQTTConnectTimeout,
		stopCh:         make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	// One report per run: fail fast instead of retrying in the background.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(cfg.MQTTConnectTimeout)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Debug("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

func (p *Publisher) Name() string { return "mqtt" }

// Connect waits for the broker connection, bounded by ctx and the configured
// connect timeout.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}

	if p.IsConnected() {
		return nil
	}

	if p.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.connectTimeout)
		defer cancel()
	}

	token := p.client.Connect()
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			p.setConnected(true)
			return nil
		}

		select {
		case <-ctx.Done():
			p.client.Disconnect(0)
			return ctx.Err()
		case <-p.stopCh:
			p.client.Disconnect(0)
			return ErrStopped
		default:
		}
	}
}

// Record publishes rep, connecting first if needed.
func (p *Publisher) Record(ctx context.Context, rep weather.Report) error {
	if err := p.Connect(ctx); err != nil {
		return err
	}
	return p.PublishReport(rep)
}

// PublishReport publishes rep on an established connection.
func (p *Publisher) PublishReport(rep weather.Report) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt publisher not connected")
	}

	topic := TopicFor(p.cfg.MQTTTopicPrefix, rep.Location)

	ts := rep.FetchedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	data, err := json.Marshal(ReportMessage{
		Location:     strings.TrimSpace(rep.Location),
		TemperatureC: rep.Reading.TemperatureC,
		FeelsLikeC:   rep.Reading.FeelsLikeC,
		Condition:    rep.Reading.Condition.Text,
		Message:      rep.Message,
		Timestamp:    ts.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	token := p.client.Publish(topic, qos, true, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	p.logger.Debug("published report", "topic", topic, "bytes", len(data))
	return nil
}

// TopicFor returns prefix/slug, where slug is the location trimmed, lowercased
// and reduced to letters, digits and single dashes.
func TopicFor(prefix, location string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(location)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 0x7f && !unicode.IsSpace(r):
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
		default:
			dash = b.Len() > 0
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "unknown"
	}
	return prefix + "/" + slug
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect is idempotent. After it, Connect returns ErrStopped.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	if p.client != nil {
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	p.logger.Debug("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
