package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lsst-ts/ts-dream-common/internal/config"
	"github.com/lsst-ts/ts-dream-common/internal/mock"
	"github.com/lsst-ts/ts-dream-common/internal/observability"
)

var startedAt = time.Now()

func main() {
	configPath := flag.String("config", "", "path to mock server TOML config")
	flag.Parse()

	log := observability.InitLogger("mock-dream")

	cfg := config.DefaultServerConfig()
	if *configPath != "" {
		loaded, err := config.LoadServerConfig(*configPath)
		if err != nil {
			log.Error().Err(err).Msg("config load failed")
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Addr).Msg("listen failed")
		os.Exit(1)
	}

	server := mock.NewServer(cfg, log)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx, ln)
	}()

	go serveAdmin(ctx, cfg, server, log)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("serve failed")
			os.Exit(1)
		}
	}
}

// serveAdmin exposes health, readiness and metrics over HTTP.
func serveAdmin(ctx context.Context, cfg config.ServerConfig, server *mock.Server, log zerolog.Logger) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startedAt).String(),
			"service": cfg.Name,
		})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":            true,
			"client_connected": server.Connected(),
			"uptime":           time.Since(startedAt).String(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: cfg.AdminAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.AdminAddr).Msg("admin listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn().Err(err).Msg("admin server stopped")
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
