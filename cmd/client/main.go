package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/luyingjie/aigames-client/internal/client"
	"github.com/luyingjie/aigames-client/internal/config"
	"github.com/luyingjie/aigames-client/internal/gateway"
	"github.com/luyingjie/aigames-client/internal/nanoclient"
)

const version = "v0.1.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port for the local API (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`aigames-client - Dou Dizhu game client

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port for the local API (default: 8080 or PORT env var)

Environment Variables:
  PORT             Port for the local API (default: 8080)
  AIGAMES_HOST     Game server host (default: 127.0.0.1)
  AIGAMES_PORT     Game server port (default: 3250)
  AIGAMES_WS_PATH  Game server websocket path (default: /nano)
  POLL_INTERVAL    Game state poll interval (default: 2s)
  CLIENT_TYPE      Client type reported in the handshake (default: go-websocket)
  CLIENT_VERSION   Client version reported in the handshake (default: 0.0.1)

Examples:
  %s                  Start the client with default settings
  %s --port 3000      Serve the local API on port 3000

Point a UI (or curl) at http://localhost:8080/api/state after starting.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("aigames-client %s\n", version)
		return
	}

	// .env is optional
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.GatewayPort = *portFlag
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	sess := nanoclient.New(cfg.ServerURL(), cfg.ClientType, cfg.Version, zerologlog.Logger)
	sess.SetPushHandler(func(route string, data []byte) {
		zerologlog.Info().Str("route", route).Int("bytes", len(data)).Msg("server push")
	})

	engine := client.New(sess, cfg.PollInterval, zerologlog.Logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zerologlog.Info().
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	gateway.New(engine, zerologlog.Logger).Mount(r)

	srv := &http.Server{Addr: ":" + cfg.GatewayPort, Handler: r}
	go func() {
		zerologlog.Info().Str("server", cfg.ServerURL()).Str("port", cfg.GatewayPort).Msg("starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zerologlog.Info().Msg("shutting down")
	engine.StopPolling()
	sess.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerologlog.Warn().Err(err).Msg("shutdown")
	}
}
