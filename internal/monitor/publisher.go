package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/joeycumines/arbor/internal/bt"
)

// DefaultSubject is the NATS subject frames are published on by default.
const DefaultSubject = "arbor.frames"

// ConnectionConfig holds configuration for a NATS connection.
type ConnectionConfig struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string
	// Name identifies this client to the server.
	Name string
	// MaxReconnects is the maximum number of reconnection attempts; -1 is
	// unlimited.
	MaxReconnects int
	// ReconnectWait is the time to wait between reconnection attempts.
	ReconnectWait time.Duration
	// Timeout is the connection timeout.
	Timeout time.Duration
}

// DefaultConnectionConfig returns a configuration with sensible defaults.
func DefaultConnectionConfig(url string) ConnectionConfig {
	return ConnectionConfig{
		URL:           url,
		Name:          "arbor",
		MaxReconnects: 10,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Connect establishes a NATS connection, giving up when ctx is done.
func Connect(ctx context.Context, config ConnectionConfig, logger *slog.Logger) (*nats.Conn, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("monitor: NATS URL cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []nats.Option{
		nats.Name(config.Name),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.Timeout(config.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("[Monitor] NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("[Monitor] NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Debug("[Monitor] NATS connection closed")
		}),
	}

	type result struct {
		conn *nats.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(config.URL, opts...)
		ch <- result{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, fmt.Errorf("monitor: connection cancelled: %w", ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("monitor: connect to NATS: %w", res.err)
		}
		return res.conn, nil
	}
}

// Close drains conn, closing it outright if draining fails.
func Close(conn *nats.Conn) error {
	if conn == nil {
		return nil
	}
	if err := conn.Drain(); err != nil {
		conn.Close()
		return fmt.Errorf("monitor: drain connection: %w", err)
	}
	return nil
}

// Conn is the subset of *nats.Conn used to publish frames.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher is a [bt.Observer] that publishes a [Frame] after every tick.
// Publish errors are logged; they never affect the tree.
type Publisher[W any] struct {
	conn    Conn
	subject string
	name    string
	root    *bt.Node[W]
	logger  *slog.Logger
}

// NewPublisher returns a publisher of frames for the tree rooted at root.
// An empty subject selects [DefaultSubject].
func NewPublisher[W any](conn Conn, subject, name string, root *bt.Node[W], logger *slog.Logger) *Publisher[W] {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher[W]{
		conn:    conn,
		subject: subject,
		name:    name,
		root:    root,
		logger:  logger,
	}
}

// ObserveTick implements [bt.Observer].
func (p *Publisher[W]) ObserveTick(event bt.TickEvent) {
	data, err := Encode(NewFrame(p.name, p.root, event))
	if err != nil {
		p.logger.Error("[Monitor] encode failed", "seq", event.Seq, "error", err)
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("[Monitor] publish failed", "subject", p.subject, "seq", event.Seq, "error", err)
	}
}

// Subscribe delivers the frames published on subject to fn. Messages that
// do not decode are logged and dropped.
func Subscribe(conn *nats.Conn, subject string, fn func(Frame), logger *slog.Logger) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		frame, err := Decode(msg.Data)
		if err != nil {
			logger.Warn("[Monitor] dropped message", "subject", msg.Subject, "error", err)
			return
		}
		fn(frame)
	})
	if err != nil {
		return nil, fmt.Errorf("monitor: subscribe %s: %w", subject, err)
	}
	return sub, nil
}
