package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lsst-ts/ts-dream-common/internal/client"
	"github.com/lsst-ts/ts-dream-common/internal/observability"
)

// runnerConfigFile persists the DREAM server target for the demo run.
type runnerConfigFile struct {
	ServerAddr                string  `toml:"server_addr"`
	ConnectTimeoutSeconds     float64 `toml:"connect_timeout_seconds"`
	CommunicateTimeoutSeconds float64 `toml:"communicate_timeout_seconds"`
	TelemetryLines            int     `toml:"telemetry_lines"`
}

func main() {
	configPath := flag.String("config", "", "path to client runner TOML config")
	flag.Parse()

	log := observability.InitLogger("dream-client-runner")

	cfg := client.DefaultConfig()
	telemetryLines := 0
	if *configPath != "" {
		var file runnerConfigFile
		if _, err := toml.DecodeFile(*configPath, &file); err != nil {
			log.Error().Err(err).Msg("config load failed")
			os.Exit(1)
		}
		if file.ServerAddr != "" {
			cfg.ServerAddr = file.ServerAddr
		}
		if file.ConnectTimeoutSeconds > 0 {
			cfg.ConnectTimeout = time.Duration(file.ConnectTimeoutSeconds * float64(time.Second))
		}
		if file.CommunicateTimeoutSeconds > 0 {
			cfg.CommunicateTimeout = time.Duration(file.CommunicateTimeoutSeconds * float64(time.Second))
		}
		telemetryLines = file.TelemetryLines
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := client.NewRunner(client.New(cfg, log), log)
	if telemetryLines > 0 {
		runner.TelemetryTarget = telemetryLines
	}
	if err := runner.NominalRun(ctx); err != nil {
		log.Error().Err(err).Msg("nominal run failed")
		os.Exit(1)
	}
}
