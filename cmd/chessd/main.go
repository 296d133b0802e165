package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/otbchess/internal/archive"
	"github.com/justinabrahms/otbchess/internal/chess"
	"github.com/justinabrahms/otbchess/internal/config"
	"github.com/justinabrahms/otbchess/internal/session"
	"github.com/justinabrahms/otbchess/internal/web"
)

func main() {
	var (
		showHelp bool
		nodeID   int64
	)
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Int64Var(&nodeID, "node", 1, "Snowflake node ID used for game IDs (0-1023)")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg.Development)

	store, closeStore, err := openArchive(cfg.Archive)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Archive.Backend).Msg("Failed to open archive")
	}
	defer closeStore()

	sessions, err := session.NewManager(nodeID, store, chess.Headers{
		Event: cfg.PGN.Event,
		Site:  cfg.PGN.Site,
		Round: cfg.PGN.Round,
		White: cfg.PGN.White,
		Black: cfg.PGN.Black,
	})
	if err != nil {
		log.Fatal().Err(err).Int64("node", nodeID).Msg("Failed to create session manager")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := web.NewHub()
	go hub.Run(hubCtx)

	service := web.NewService(sessions, hub)

	router := mux.NewRouter()
	router.Use(web.CORS)
	service.Routes(router)

	if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.Server.StaticDir)))
	} else {
		log.Warn().Str("dir", cfg.Server.StaticDir).Msg("Static directory not found, serving API only")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("archive", cfg.Archive.Backend).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	stopHub()

	log.Info().Int("sessions", sessions.Len()).Msg("Server exited")
}

func setupLogging(dev config.DevelopmentConfig) {
	level, err := zerolog.ParseLevel(dev.LogLevel)
	if err != nil {
		log.Warn().Str("level", dev.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if dev.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func openArchive(cfg config.ArchiveConfig) (archive.Store, func(), error) {
	if cfg.Backend != config.BackendRedis {
		return archive.NewMemoryStore(cfg.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Connected to redis archive")

	return archive.NewRedisStore(client, cfg.TTL), func() { client.Close() }, nil
}

func showHelpMessage() {
	fmt.Println(`otbchess server

DESCRIPTION:
    Hosts over-the-board chess games. Each game is an engine session that
    enforces the rules, keeps an undoable history and renders PGN.
    Spectators follow a game over WebSocket.

USAGE:
    chessd [OPTIONS]

OPTIONS:
    -h, --help    Show this help message
    -node N       Snowflake node ID for game IDs (default 1)

CONFIGURATION:
    Read from config.yaml in the current directory or ./config. Every key
    can be overridden with OTBCHESS_<SECTION>_<KEY>, e.g. OTBCHESS_SERVER_PORT.

    Example config.yaml:
        server:
          host: localhost
          port: 8080
          static_dir: ./web/static

        pgn:
          event: Club Night
          site: Oslo

        archive:
          backend: redis        # memory or redis
          redis_addr: localhost:6379
          ttl: 24h

        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET    /api/health                     - Service health check
    GET    /api/games                      - List hosted games
    POST   /api/games                      - Create a game (optional headers)
    POST   /api/games/import               - Create a game from PGN text
    GET    /api/games/{id}                 - Game snapshot
    DELETE /api/games/{id}                 - Drop a game
    POST   /api/games/{id}/reset           - Start over
    GET    /api/games/{id}/moves?square=e2 - Legal moves of a piece
    POST   /api/games/{id}/select          - Select a piece
    POST   /api/games/{id}/moves           - Play a move
    POST   /api/games/{id}/promotion       - Choose the promotion piece
    POST   /api/games/{id}/undo            - Take back a move
    POST   /api/games/{id}/redo            - Replay an undone move
    POST   /api/games/{id}/annotation      - Annotate the last move
    PUT    /api/games/{id}/headers         - Update PGN headers
    GET    /api/games/{id}/pgn             - Download the transcript
    POST   /api/games/{id}/archive         - Archive the transcript
    GET    /api/archive/{id}               - Fetch an archived transcript
    GET    /ws?gameId={id}                 - Watch a game

EXAMPLES:
    # Start with default configuration
    chessd

    # Create a game and play 1. e4
    curl -X POST http://localhost:8080/api/games \
      -H "Content-Type: application/json" \
      -d '{"white": "Alice", "black": "Bob"}'
    curl -X POST http://localhost:8080/api/games/<id>/moves \
      -d '{"from": "e2", "to": "e4"}'`)
}
