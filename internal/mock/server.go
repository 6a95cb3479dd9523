package mock

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lsst-ts/ts-dream-common/internal/config"
	"github.com/lsst-ts/ts-dream-common/internal/dream"
	"github.com/lsst-ts/ts-dream-common/internal/observability"
	"github.com/lsst-ts/ts-dream-common/internal/protocol"
	"github.com/lsst-ts/ts-dream-common/internal/protocol/schema"
)

var (
	ErrRoofNotClosed      = errors.New("mock: roof already open")
	ErrRoofNotOpen        = errors.New("mock: roof already closed")
	ErrMissingParameter   = errors.New("mock: missing command parameter")
	ErrInvalidWeatherInfo = errors.New("mock: invalid weather info")
	ErrNotConnected       = errors.New("mock: no client attached")
)

type commandHandler func(ctx context.Context, params map[string]any) error

// Server is the mock DREAM server. It serves one client at a time;
// additional connections are refused while a client is attached.
type Server struct {
	cfg config.ServerConfig
	log zerolog.Logger

	mu             sync.Mutex
	conn           net.Conn
	status         dream.MasterStatus
	weather        dream.WeatherInfo
	readyForData   bool
	statusCancel   context.CancelFunc
	productsCancel context.CancelFunc

	writeMu sync.Mutex

	dispatch map[string]commandHandler
}

var _ dream.Interface = (*Server)(nil)

func NewServer(cfg config.ServerConfig, log zerolog.Logger) *Server {
	observability.RegisterMetrics()
	s := &Server{
		cfg:    cfg,
		log:    log.With().Str("component", "mock-dream").Logger(),
		status: dream.NewMasterStatus(),
	}
	// Keys mirror the command schema; the schema guarantees dispatch hits.
	s.dispatch = map[string]commandHandler{
		protocol.KeyResume: func(ctx context.Context, _ map[string]any) error {
			return s.Resume(ctx)
		},
		protocol.KeyOpenRoof: func(ctx context.Context, _ map[string]any) error {
			return s.OpenRoof(ctx)
		},
		protocol.KeyCloseRoof: func(ctx context.Context, _ map[string]any) error {
			return s.CloseRoof(ctx)
		},
		protocol.KeyStop: func(ctx context.Context, _ map[string]any) error {
			return s.Stop(ctx)
		},
		protocol.KeyReadyForData: s.handleReadyForData,
		protocol.KeyDataArchived: func(ctx context.Context, _ map[string]any) error {
			return s.SetDataArchived(ctx)
		},
		protocol.KeySetWeatherInfo: s.handleSetWeatherInfo,
	}
	return s
}

// Serve accepts clients on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("mock dream listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !s.attach(conn) {
			s.log.Warn().
				Str("remote", conn.RemoteAddr().String()).
				Msg("client already attached, refusing connection")
			_ = conn.Close()
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) attach(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return false
	}
	s.conn = conn
	observability.SetClientConnected(true)
	return true
}

func (s *Server) detach(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return
	}
	s.conn = nil
	s.readyForData = false
	s.stopStatusLoopLocked()
	s.stopProductsLoopLocked()
	observability.SetClientConnected(false)
}

// Connected reports whether a client is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// handleConn reads one command per line until the client goes away. Each
// command executes in its own goroutine so slow operations (roof moves,
// stop) do not block the read loop.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.log.Info().Str("remote", remote).Msg("client connected")
	defer func() {
		s.detach(conn)
		_ = conn.Close()
		s.log.Info().Str("remote", remote).Msg("client disconnected")
	}()

	reader := bufio.NewReader(conn)
	for {
		data, err := protocol.ReadLine(reader)
		if err != nil {
			if errors.Is(err, protocol.ErrNotJSONObject) {
				s.log.Warn().Err(err).Msg("unparseable command line")
				s.respond(0, protocol.ResponseInvalidJSON)
				continue
			}
			if err != io.EOF && ctx.Err() == nil {
				s.log.Warn().Err(err).Str("remote", remote).Msg("read failed")
			}
			return
		}
		go s.executeCommand(ctx, data)
	}
}

// executeCommand validates one decoded command envelope, acknowledges it,
// runs it and reports the terminal verdict.
func (s *Server) executeCommand(ctx context.Context, data map[string]any) {
	start := time.Now()
	id := commandID(data)

	if err := schema.Validate(schema.Command, data); err != nil {
		s.log.Warn().Err(err).Int64("command_id", id).Msg("command rejected")
		s.respond(id, protocol.ResponseInvalidJSON)
		observability.RecordCommand("invalid", protocol.ResponseInvalidJSON.String(), time.Since(start))
		return
	}

	key, _ := data["key"].(string)
	params, _ := data["parameters"].(map[string]any)
	s.log.Debug().Int64("command_id", id).Str("key", key).Msg("command accepted")
	s.respond(id, protocol.ResponseAck)

	if err := s.dispatch[key](ctx, params); err != nil {
		s.log.Warn().Err(err).Int64("command_id", id).Str("key", key).Msg("command failed")
		s.respond(id, protocol.ResponseCommandFailed)
		observability.RecordCommand(key, protocol.ResponseCommandFailed.String(), time.Since(start))
		return
	}
	s.respond(id, protocol.ResponseLast)
	observability.RecordCommand(key, protocol.ResponseLast.String(), time.Since(start))
}

func commandID(data map[string]any) int64 {
	raw, ok := data["command_id"].(float64)
	if !ok {
		return 0
	}
	return int64(raw)
}

func (s *Server) respond(id int64, response protocol.CommandResponse) {
	err := s.write(protocol.Response{CommandID: id, CommandResponse: response})
	if err != nil {
		s.log.Warn().Err(err).Int64("command_id", id).
			Str("response", response.String()).Msg("response write failed")
	}
}

func (s *Server) write(v any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return protocol.WriteLine(conn, v)
}

// Resume starts the periodic status telemetry. Resuming while already
// resumed is a no-op.
func (s *Server) Resume(ctx context.Context) error {
	s.log.Debug().Msg("resume")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusCancel != nil {
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.statusCancel = cancel
	go s.statusLoop(loopCtx)
	return nil
}

// Stop halts operations after the configured stop duration and cancels the
// status telemetry.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Debug().Msg("stop")
	if err := sleepCtx(ctx, s.cfg.StopDuration()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopStatusLoopLocked()
	return nil
}

// OpenRoof moves the roof from closed to open over the configured duration.
func (s *Server) OpenRoof(ctx context.Context) error {
	s.log.Debug().Msg("open roof")
	s.mu.Lock()
	if s.status.RoofStatus != protocol.RoofClosed {
		s.mu.Unlock()
		return ErrRoofNotClosed
	}
	s.status.RoofStatus = protocol.RoofOpening
	s.mu.Unlock()

	if err := sleepCtx(ctx, s.cfg.RoofDuration()); err != nil {
		return err
	}

	s.mu.Lock()
	s.status.RoofStatus = protocol.RoofOpen
	s.mu.Unlock()
	return nil
}

// CloseRoof moves the roof from open to closed over the configured duration.
func (s *Server) CloseRoof(ctx context.Context) error {
	s.log.Debug().Msg("close roof")
	s.mu.Lock()
	if s.status.RoofStatus != protocol.RoofOpen {
		s.mu.Unlock()
		return ErrRoofNotOpen
	}
	s.status.RoofStatus = protocol.RoofClosing
	s.mu.Unlock()

	if err := sleepCtx(ctx, s.cfg.RoofDuration()); err != nil {
		return err
	}

	s.mu.Lock()
	s.status.RoofStatus = protocol.RoofClosed
	s.mu.Unlock()
	return nil
}

// SetReadyForData starts or cancels the new-data-product notifications.
func (s *Server) SetReadyForData(ctx context.Context, ready bool) error {
	s.log.Debug().Bool("ready", ready).Msg("set ready for data")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyForData = ready
	if !ready {
		s.stopProductsLoopLocked()
		return nil
	}
	if s.productsCancel != nil {
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.productsCancel = cancel
	go s.productsLoop(loopCtx)
	return nil
}

// SetDataArchived records that the observatory archived a data product.
// Parameters are reserved until the real instrument defines them.
func (s *Server) SetDataArchived(ctx context.Context) error {
	s.log.Debug().Msg("set data archived")
	return nil
}

// SetWeatherInfo validates and stores observatory weather data.
func (s *Server) SetWeatherInfo(ctx context.Context, info map[string]any) error {
	s.log.Debug().Interface("weather_info", info).Msg("set weather info")
	if err := schema.Validate(schema.WeatherInfo, info); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeatherInfo, err)
	}
	var weather dream.WeatherInfo
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeatherInfo, err)
	}
	if err := json.Unmarshal(payload, &weather); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeatherInfo, err)
	}
	s.mu.Lock()
	s.weather = weather
	s.mu.Unlock()
	return nil
}

func (s *Server) handleReadyForData(ctx context.Context, params map[string]any) error {
	ready, ok := params["ready"].(bool)
	if !ok {
		return fmt.Errorf("%w: ready", ErrMissingParameter)
	}
	return s.SetReadyForData(ctx, ready)
}

func (s *Server) handleSetWeatherInfo(ctx context.Context, params map[string]any) error {
	info, ok := params["weather_info"].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: weather_info", ErrMissingParameter)
	}
	return s.SetWeatherInfo(ctx, info)
}

// stopStatusLoopLocked cancels the status loop; caller holds s.mu.
func (s *Server) stopStatusLoopLocked() {
	if s.statusCancel == nil {
		return
	}
	s.statusCancel()
	s.statusCancel = nil
}

// stopProductsLoopLocked cancels the products loop; caller holds s.mu.
func (s *Server) stopProductsLoopLocked() {
	if s.productsCancel == nil {
		return
	}
	s.productsCancel()
	s.productsCancel = nil
}

// MasterStatus returns a snapshot of the master server status.
func (s *Server) MasterStatus() dream.MasterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Weather returns a snapshot of the stored weather info.
func (s *Server) Weather() dream.WeatherInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weather
}

// ReadyForData reports whether the client declared itself ready for data.
func (s *Server) ReadyForData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyForData
}

// StatusLoopRunning reports whether status telemetry is active.
func (s *Server) StatusLoopRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCancel != nil
}

// ProductsLoopRunning reports whether data-product notifications are active.
func (s *Server) ProductsLoopRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productsCancel != nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
