package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/lsst-ts/ts-dream-common/internal/config"
	"github.com/lsst-ts/ts-dream-common/internal/mock"
	"github.com/lsst-ts/ts-dream-common/internal/protocol"
	"github.com/lsst-ts/ts-dream-common/internal/testutil/testlog"
)

const testTimeout = 10 * time.Second

func startMock(t *testing.T) (*mock.Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg := config.DefaultServerConfig()
	cfg.StatusIntervalSeconds = 0.05
	cfg.DataProductIntervalSeconds = 0.05
	cfg.RoofDurationSeconds = 0.01
	cfg.StopDurationSeconds = 0.01

	srv := mock.NewServer(cfg, testlog.New(t))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = srv.Serve(ctx, ln)
	}()
	return srv, ln.Addr().String()
}

func newClient(t *testing.T, addr string) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ServerAddr = addr
	c := New(cfg, testlog.New(t))
	t.Cleanup(func() { _ = c.Disconnect() })
	return c
}

// await reads until the terminal response for id, failing on a negative
// verdict.
func await(t *testing.T, ctx context.Context, c *Client, id int64) {
	t.Helper()
	for {
		data, err := c.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		resp, ok := ResponseFrom(data)
		if !ok || resp.CommandID != id {
			continue
		}
		switch resp.CommandResponse {
		case protocol.ResponseAck:
			continue
		case protocol.ResponseLast:
			return
		default:
			t.Fatalf("command %d: %v", id, resp.CommandResponse)
		}
	}
}

func TestConnectAndDisconnect(t *testing.T) {
	_, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newClient(t, addr)
	if c.Connected() {
		t.Fatal("connected before connect")
	}
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !c.Connected() {
		t.Fatal("not connected after connect")
	}
	if err := c.Connect(ctx); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if c.Connected() {
		t.Fatal("connected after disconnect")
	}
	// Disconnecting again is safe.
	if err := c.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
}

func TestRunRequiresConnection(t *testing.T) {
	c := newClient(t, "127.0.0.1:5000")
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if _, err := c.Run(ctx, protocol.KeyResume, nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, err := c.Read(ctx); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestOpenAndCloseRoof(t *testing.T) {
	srv, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newClient(t, addr)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	id, err := c.Run(ctx, protocol.KeyOpenRoof, nil)
	if err != nil {
		t.Fatalf("run openRoof: %v", err)
	}
	await(t, ctx, c, id)
	if got := srv.MasterStatus().RoofStatus; got != protocol.RoofOpen {
		t.Fatalf("roof status after open: %v", got)
	}

	id, err = c.Run(ctx, protocol.KeyCloseRoof, nil)
	if err != nil {
		t.Fatalf("run closeRoof: %v", err)
	}
	await(t, ctx, c, id)
	if got := srv.MasterStatus().RoofStatus; got != protocol.RoofClosed {
		t.Fatalf("roof status after close: %v", got)
	}
}

func TestResumeStopAndStatusTelemetry(t *testing.T) {
	srv, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newClient(t, addr)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	id, err := c.Run(ctx, protocol.KeyResume, nil)
	if err != nil {
		t.Fatalf("run resume: %v", err)
	}
	await(t, ctx, c, id)
	if !srv.StatusLoopRunning() {
		t.Fatal("status loop not running after resume")
	}

	// Telemetry and responses share the stream; scan for a status line.
	for {
		data, err := c.Read(ctx)
		if err != nil {
			t.Fatalf("read telemetry: %v", err)
		}
		if _, ok := ResponseFrom(data); ok {
			continue
		}
		if data["roof_status"] == nil {
			continue
		}
		if got := data["device"].(float64); protocol.Device(got) != protocol.DeviceMaster {
			t.Fatalf("device: %v", got)
		}
		if got := data["rain_sensor"].(bool); !got {
			t.Fatal("rain_sensor false")
		}
		break
	}

	id, err = c.Run(ctx, protocol.KeyStop, nil)
	if err != nil {
		t.Fatalf("run stop: %v", err)
	}
	await(t, ctx, c, id)
	if srv.StatusLoopRunning() {
		t.Fatal("status loop running after stop")
	}
}

func TestSetWeatherInfo(t *testing.T) {
	srv, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newClient(t, addr)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	id, err := c.Run(ctx, protocol.KeySetWeatherInfo, map[string]any{
		"weather_info": map[string]any{
			"temperature":               -5.0,
			"humidity":                  80.0,
			"wind_speed":                12.0,
			"wind_direction":            90.0,
			"pressure":                  98000.0,
			"rain":                      2.5,
			"cloudcover":                75.0,
			"safe_observing_conditions": false,
		},
	})
	if err != nil {
		t.Fatalf("run setWeatherInfo: %v", err)
	}
	await(t, ctx, c, id)

	weather := srv.Weather()
	if weather.Temperature != -5.0 || weather.Rain != 2.5 || weather.SafeObservingConditions {
		t.Fatalf("weather mismatch: %+v", weather)
	}
}

func TestCommandIDsIncrease(t *testing.T) {
	_, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newClient(t, addr)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	first, err := c.Run(ctx, protocol.KeyDataArchived, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	await(t, ctx, c, first)
	second, err := c.Run(ctx, protocol.KeyDataArchived, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	await(t, ctx, c, second)
	if second != first+1 {
		t.Fatalf("command ids not sequential: %d then %d", first, second)
	}
}
