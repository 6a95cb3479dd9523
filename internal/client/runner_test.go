package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lsst-ts/ts-dream-common/internal/protocol"
	"github.com/lsst-ts/ts-dream-common/internal/testutil/testlog"
)

func TestNominalRun(t *testing.T) {
	srv, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := newClient(t, addr)
	runner := NewRunner(c, testlog.New(t))
	runner.TelemetryTarget = 2

	if err := runner.NominalRun(ctx); err != nil {
		t.Fatalf("nominal run: %v", err)
	}
	if c.Connected() {
		t.Fatal("still connected after run")
	}
	if srv.StatusLoopRunning() || srv.ProductsLoopRunning() {
		t.Fatal("server telemetry loops still running after run")
	}
	if got := srv.MasterStatus().RoofStatus; got != protocol.RoofClosed {
		t.Fatalf("roof status after run: %v", got)
	}
	if srv.ReadyForData() {
		t.Fatal("server still ready for data after run")
	}
	if runner.telemetrySeen < runner.TelemetryTarget {
		t.Fatalf("telemetry seen: %d", runner.telemetrySeen)
	}
}

func TestNominalRunFailsWithoutServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServerAddr = "127.0.0.1:1" // nothing listens here
	cfg.ConnectTimeout = 100 * time.Millisecond
	cfg.Backoff = BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1.0}

	c := New(cfg, testlog.New(t))
	runner := NewRunner(c, testlog.New(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.NominalRun(ctx); err == nil {
		t.Fatal("run succeeded without a server")
	}
}

func TestExecReportsCommandFailed(t *testing.T) {
	_, addr := startMock(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	c := newClient(t, addr)
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	runner := NewRunner(c, testlog.New(t))

	// Closing an already closed roof fails on the server.
	err := runner.exec(ctx, protocol.KeyCloseRoof, nil)
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}
}
