package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lsst-ts/ts-dream-common/internal/protocol"
)

var (
	ErrCommandRejected = errors.New("client: command rejected by server")
	ErrCommandFailed   = errors.New("client: command failed on server")
)

const defaultConnectAttempts = 5

// Runner drives a nominal demonstration run against a DREAM server:
// resume, open the roof, announce readiness for data, observe telemetry,
// then wind everything down again.
type Runner struct {
	client *Client
	log    zerolog.Logger

	// TelemetryTarget is how many telemetry lines to observe while ready
	// for data before winding down.
	TelemetryTarget int

	telemetrySeen int
}

func NewRunner(c *Client, log zerolog.Logger) *Runner {
	return &Runner{
		client:          c,
		log:             log.With().Str("component", "client-runner").Logger(),
		TelemetryTarget: 3,
	}
}

// NominalRun executes the full demonstration sequence.
func (r *Runner) NominalRun(ctx context.Context) error {
	if err := r.client.ConnectWithRetry(ctx, defaultConnectAttempts); err != nil {
		return err
	}
	defer func() {
		_ = r.client.Disconnect()
	}()

	steps := []struct {
		key    string
		params map[string]any
	}{
		{key: protocol.KeyResume},
		{key: protocol.KeyOpenRoof},
		{key: protocol.KeyReadyForData, params: map[string]any{"ready": true}},
		{key: protocol.KeySetWeatherInfo, params: map[string]any{
			"weather_info": map[string]any{
				"temperature":               12.5,
				"humidity":                  40.0,
				"wind_speed":                3.2,
				"wind_direction":            270.0,
				"pressure":                  101325.0,
				"rain":                      0.0,
				"cloudcover":                10.0,
				"safe_observing_conditions": true,
			},
		}},
		{key: protocol.KeyDataArchived},
	}
	for _, step := range steps {
		if err := r.exec(ctx, step.key, step.params); err != nil {
			return err
		}
	}

	if err := r.observeTelemetry(ctx); err != nil {
		return err
	}

	winddown := []struct {
		key    string
		params map[string]any
	}{
		{key: protocol.KeyReadyForData, params: map[string]any{"ready": false}},
		{key: protocol.KeyCloseRoof},
		{key: protocol.KeyStop},
	}
	for _, step := range winddown {
		if err := r.exec(ctx, step.key, step.params); err != nil {
			return err
		}
	}

	r.log.Info().Int("telemetry_lines", r.telemetrySeen).Msg("nominal run complete")
	return nil
}

// exec submits one command and reads until its terminal response, observing
// any telemetry interleaved on the stream.
func (r *Runner) exec(ctx context.Context, key string, params map[string]any) error {
	id, err := r.client.Run(ctx, key, params)
	if err != nil {
		return err
	}
	for {
		data, err := r.client.Read(ctx)
		if err != nil {
			return err
		}
		resp, ok := ResponseFrom(data)
		if !ok {
			r.observe(data)
			continue
		}
		if resp.CommandID != id {
			r.log.Debug().Int64("command_id", resp.CommandID).
				Str("response", resp.CommandResponse.String()).
				Msg("response for other command")
			continue
		}
		switch resp.CommandResponse {
		case protocol.ResponseAck:
			continue
		case protocol.ResponseLast:
			r.log.Info().Str("key", key).Msg("command complete")
			return nil
		case protocol.ResponseInvalidJSON:
			return fmt.Errorf("%w: %s", ErrCommandRejected, key)
		case protocol.ResponseCommandFailed:
			return fmt.Errorf("%w: %s", ErrCommandFailed, key)
		default:
			return fmt.Errorf("client: unknown response %d for %s", resp.CommandResponse, key)
		}
	}
}

// observeTelemetry reads until TelemetryTarget telemetry lines were seen.
func (r *Runner) observeTelemetry(ctx context.Context) error {
	for r.telemetrySeen < r.TelemetryTarget {
		data, err := r.client.Read(ctx)
		if err != nil {
			return err
		}
		if _, ok := ResponseFrom(data); ok {
			continue
		}
		r.observe(data)
	}
	return nil
}

func (r *Runner) observe(data map[string]any) {
	r.telemetrySeen++
	switch {
	case data["metadata"] != nil:
		r.log.Info().Interface("products", data).Msg("new data products")
	case data["roof_status"] != nil:
		r.log.Info().Interface("status", data).Msg("master status")
	default:
		r.log.Info().Interface("telemetry", data).Msg("telemetry")
	}
}
