// Package mqtt publishes MS5611 readings to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrStopped      = errors.New("mqtt client stopped")
)

const publishTimeout = 5 * time.Second

type Options struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Station  string
}

// Telemetry is the JSON payload published per reading.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature_c"`
	Pressure    float64   `json:"pressure_mbar"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Sequence    uint64    `json:"sequence"`
}

type Client struct {
	client    paho.Client
	opts      Options
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	seq       uint64

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	c := &Client{
		opts:   opts,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	po := paho.NewClientOptions()
	po.AddBroker(opts.Broker)
	po.SetClientID(opts.ClientID)
	po.SetCleanSession(true)
	po.SetAutoReconnect(true)
	po.SetConnectRetry(true)
	po.SetConnectRetryInterval(5 * time.Second)
	po.SetMaxReconnectInterval(60 * time.Second)
	po.SetKeepAlive(30 * time.Second)
	po.SetPingTimeout(10 * time.Second)

	po.SetOnConnectHandler(func(_ paho.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", slog.String("broker", opts.Broker))
	})
	po.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", slog.Any("err", err))
	})

	c.client = paho.NewClient(po)
	return c
}

// Connect waits for the first connection to the broker, or for ctx or
// Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return ErrStopped
	default:
	}
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return ErrStopped
		default:
		}
	}
}

// Topic is where readings of station are published.
func Topic(station string) string {
	return fmt.Sprintf("stations/%s/telemetry", station)
}

// NewTelemetry stamps a reading with the client's station and the next
// sequence number.
func (c *Client) NewTelemetry(temperature, pressure float64, at time.Time) Telemetry {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	return Telemetry{
		StationID:   c.opts.Station,
		Timestamp:   at,
		Temperature: temperature,
		Pressure:    pressure,
		Sequence:    seq,
	}
}

func (c *Client) PublishReading(t Telemetry) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	topic := Topic(t.StationID)
	token := c.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish telemetry to %s: %w", topic, err)
	}

	c.logger.Debug("published telemetry", slog.String("topic", topic), slog.Uint64("seq", t.Sequence))
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client. It is safe to call more than once.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.client.Disconnect(250)
	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
