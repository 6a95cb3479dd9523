package client

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lsst-ts/ts-dream-common/internal/dream"
	"github.com/lsst-ts/ts-dream-common/internal/protocol"
)

var (
	ErrAlreadyConnected = errors.New("client: already connected")
	ErrNotConnected     = errors.New("client: not connected")
)

// Config defines client transport reliability settings.
type Config struct {
	ServerAddr         string
	ConnectTimeout     time.Duration
	CommunicateTimeout time.Duration
	Backoff            BackoffConfig
}

// DefaultConfig returns contract-aligned client defaults against a local
// mock server.
func DefaultConfig() Config {
	return Config{
		ServerAddr:         "127.0.0.1:5000",
		ConnectTimeout:     5 * time.Second,
		CommunicateTimeout: 5 * time.Second,
		Backoff:            DefaultBackoff(),
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ServerAddr == "" {
		c.ServerAddr = def.ServerAddr
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.CommunicateTimeout <= 0 {
		c.CommunicateTimeout = def.CommunicateTimeout
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff = def.Backoff
	}
	return c
}

// Client talks to one DREAM server over the JSON wire.
type Client struct {
	cfg Config
	log zerolog.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader

	// streamMu serializes command writes so envelopes never interleave.
	streamMu sync.Mutex

	ids *protocol.CommandIDs
}

func New(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		cfg: cfg.WithDefaults(),
		log: log.With().Str("component", "dream-client").Logger(),
		ids: protocol.DefaultCommandIDs(),
	}
}

// Connected reports whether the client holds a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials the DREAM server. Connecting twice is an error.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return ErrAlreadyConnected
	}
	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.ServerAddr)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.log.Info().Str("addr", c.cfg.ServerAddr).Msg("connected")
	return nil
}

// ConnectWithRetry dials with backoff until it succeeds, attempts are
// exhausted, or ctx is done.
func (c *Client) ConnectWithRetry(ctx context.Context, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = c.Connect(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrAlreadyConnected) {
			return lastErr
		}
		delay := NextBackoffDelay(c.cfg.Backoff, attempt, nil)
		c.log.Warn().Err(lastErr).Int("attempt", attempt).
			Dur("retry_in", delay).Msg("connect failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

// Disconnect closes the connection. Safe to call when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	c.log.Info().Msg("disconnected")
	return err
}

// Run writes one command envelope with the next command id and the current
// TAI timestamp, and returns the id so the caller can match responses.
func (c *Client) Run(ctx context.Context, key string, parameters map[string]any) (int64, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}
	cmd := protocol.Command{
		CommandID:       c.ids.Next(),
		Key:             key,
		Parameters:      parameters,
		TimeCommandSent: dream.CurrentTAI(),
	}
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0, ErrNotConnected
	}
	if err := conn.SetWriteDeadline(deadline(ctx, c.cfg.CommunicateTimeout)); err != nil {
		return 0, err
	}
	if err := protocol.WriteLine(conn, cmd); err != nil {
		return 0, err
	}
	c.log.Debug().Int64("command_id", cmd.CommandID).Str("key", key).Msg("command sent")
	return cmd.CommandID, nil
}

// Read returns the next wire line as a decoded object. It may be a command
// response or telemetry; use ResponseFrom to tell.
func (c *Client) Read(ctx context.Context) (map[string]any, error) {
	c.mu.Lock()
	conn := c.conn
	reader := c.reader
	c.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}
	if err := conn.SetReadDeadline(deadline(ctx, c.cfg.CommunicateTimeout)); err != nil {
		return nil, err
	}
	return protocol.ReadLine(reader)
}

// ResponseFrom extracts a command response envelope from a decoded line.
func ResponseFrom(data map[string]any) (protocol.Response, bool) {
	rawResponse, ok := data["command_response"].(float64)
	if !ok {
		return protocol.Response{}, false
	}
	rawID, _ := data["command_id"].(float64)
	return protocol.Response{
		CommandID:       int64(rawID),
		CommandResponse: protocol.CommandResponse(rawResponse),
	}, true
}

// deadline picks the sooner of ctx's deadline and now+timeout.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}
