// Package bus owns the MQTT connection: it connects, reconnects at a fixed
// period, resubscribes after every reconnect, feeds incoming messages to a
// handler and publishes outgoing commands.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"chickencoop_bridge/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var (
	ErrNotConnected   = errors.New("mqtt not connected")
	ErrPublishTimeout = errors.New("mqtt publish timed out")
	ErrClosed         = errors.New("mqtt bus closed")
)

const (
	defaultReconnectPeriod = 5 * time.Second
	defaultPublishTimeout  = 5 * time.Second
	disconnectQuiesceMs    = 250
)

// Handler receives every message on a subscribed topic. It is called from a
// single paho goroutine in arrival order.
type Handler func(topic string, payload []byte)

// ClientFactory builds the underlying paho client. Tests replace it.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

type Config struct {
	Broker          string
	ClientID        string
	Username        string
	Password        string
	QoS             byte
	ReconnectPeriod time.Duration
	PublishTimeout  time.Duration
	Topics          []string
}

// Option customizes a Bus.
type Option func(*Bus)

// WithClientFactory replaces mqtt.NewClient.
func WithClientFactory(f ClientFactory) Option {
	return func(b *Bus) { b.newClient = f }
}

// WithStatusHook is called with true on every connect and false on every loss.
func WithStatusHook(f func(connected bool)) Option {
	return func(b *Bus) { b.statusHook = f }
}

type Bus struct {
	cfg        Config
	handler    Handler
	log        *logger.Logger
	newClient  ClientFactory
	statusHook func(bool)

	client mqtt.Client

	mu sync.Mutex
	// gen counts connection losses. A SUBACK only counts for the connection
	// that issued the SUBSCRIBE.
	gen        uint64
	subscribed map[string]bool
	closed     bool

	connected atomic.Bool
}

func New(cfg Config, handler Handler, log *logger.Logger, opts ...Option) *Bus {
	if cfg.ReconnectPeriod <= 0 {
		cfg.ReconnectPeriod = defaultReconnectPeriod
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	b := &Bus{
		cfg:        cfg,
		handler:    handler,
		log:        log,
		newClient:  mqtt.NewClient,
		subscribed: make(map[string]bool, len(cfg.Topics)),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bus) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.cfg.Broker)
	opts.SetClientID(b.cfg.ClientID)
	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}
	// Fixed retry period for both the first connect and later reconnects.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(b.cfg.ReconnectPeriod)
	opts.SetMaxReconnectInterval(b.cfg.ReconnectPeriod)
	// The broker forgets subscriptions on disconnect; onConnect restores them.
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)
	opts.SetOnConnectHandler(b.onConnect)
	opts.SetConnectionLostHandler(b.onConnectionLost)
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		b.log.Infow("mqtt_reconnecting", "broker", b.cfg.Broker)
	})
	return opts
}

// Start begins connecting. It does not wait for the broker; paho keeps
// retrying every ReconnectPeriod until Close.
func (b *Bus) Start() {
	b.mu.Lock()
	b.client = b.newClient(b.clientOptions())
	client := b.client
	b.mu.Unlock()

	token := client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			b.log.Errorw("mqtt_connect_failed", "broker", b.cfg.Broker, "err", err)
		}
	}()
}

// Connected reports whether the connection is currently usable.
func (b *Bus) Connected() bool {
	return b.connected.Load()
}

func (b *Bus) onConnect(c mqtt.Client) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	gen := b.gen
	pending := make([]string, 0, len(b.cfg.Topics))
	for _, t := range b.cfg.Topics {
		if !b.subscribed[t] {
			pending = append(pending, t)
		}
	}
	b.mu.Unlock()

	b.connected.Store(true)
	b.log.Infow("mqtt_connected", "broker", b.cfg.Broker, "resubscribe", len(pending))
	if b.statusHook != nil {
		b.statusHook(true)
	}

	for _, topic := range pending {
		token := c.Subscribe(topic, b.cfg.QoS, b.onMessage)
		if !token.WaitTimeout(b.cfg.PublishTimeout) {
			b.log.Warnw("mqtt_subscribe_timeout", "topic", topic)
			continue
		}
		if err := token.Error(); err != nil {
			b.log.Warnw("mqtt_subscribe_failed", "topic", topic, "err", err)
			continue
		}
		b.mu.Lock()
		current := b.gen == gen
		if current {
			b.subscribed[topic] = true
		}
		b.mu.Unlock()
		if !current {
			// The link dropped; the next onConnect subscribes everything again.
			b.log.Warnw("mqtt_resubscribe_interrupted", "topic", topic)
			return
		}
	}
}

func (b *Bus) onConnectionLost(_ mqtt.Client, err error) {
	b.connected.Store(false)
	b.mu.Lock()
	b.gen++
	clear(b.subscribed)
	b.mu.Unlock()
	b.log.Warnw("mqtt_connection_lost", "broker", b.cfg.Broker, "err", err)
	if b.statusHook != nil {
		b.statusHook(false)
	}
}

func (b *Bus) onMessage(_ mqtt.Client, msg mqtt.Message) {
	if b.handler != nil {
		b.handler(msg.Topic(), msg.Payload())
	}
}

// Publish sends payload on topic and waits for the broker to accept it.
// It fails fast with ErrNotConnected while the connection is down.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	client, closed := b.client, b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if client == nil || !client.IsConnectionOpen() {
		return ErrNotConnected
	}

	token := client.Publish(topic, b.cfg.QoS, false, payload)
	timer := time.NewTimer(b.cfg.PublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("publish %s: %w", topic, ErrPublishTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close unsubscribes every topic and then disconnects.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	client := b.client
	b.mu.Unlock()

	if client == nil {
		return
	}
	if client.IsConnectionOpen() && len(b.cfg.Topics) > 0 {
		token := client.Unsubscribe(b.cfg.Topics...)
		if !token.WaitTimeout(b.cfg.PublishTimeout) {
			b.log.Warnw("mqtt_unsubscribe_timeout")
		} else if err := token.Error(); err != nil {
			b.log.Warnw("mqtt_unsubscribe_failed", "err", err)
		}
	}
	b.mu.Lock()
	clear(b.subscribed)
	b.mu.Unlock()

	client.Disconnect(disconnectQuiesceMs)
	b.connected.Store(false)
	b.log.Infow("mqtt_disconnected", "broker", b.cfg.Broker)
}
