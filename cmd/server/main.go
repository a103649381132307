package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/internal/auth"
	"github.com/freeeve/global-command/api/internal/config"
	"github.com/freeeve/global-command/api/internal/handler"
	"github.com/freeeve/global-command/api/internal/logger"
	"github.com/freeeve/global-command/api/internal/middleware"
	"github.com/freeeve/global-command/api/internal/repository/postgres"
	redisrepo "github.com/freeeve/global-command/api/internal/repository/redis"
	"github.com/freeeve/global-command/api/internal/repository/sqlite"
	"github.com/freeeve/global-command/api/internal/service"
	"github.com/freeeve/global-command/api/pkg/engine"
)

func loadBoard(path string) (*engine.Board, error) {
	if path == "" {
		return engine.DefaultBoard()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.LoadBoard(data)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dev: cfg.Dev})
	log.Info().Str("port", cfg.Port).Dur("turnTimeout", cfg.TurnTimeout).Bool("dev", cfg.Dev).Msg("Config loaded")

	board, err := loadBoard(cfg.BoardPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.BoardPath).Msg("Board load failed")
	}
	log.Info().Str("board", board.Name()).Int("territories", board.TerritoryCount()).Int("seaZones", board.SeaZoneCount()).Msg("Board loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()
	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Database migration failed")
	}

	// Redis
	redisClient, err := redisrepo.NewClient(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	if err := redisClient.EnableExpiryEvents(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to set Redis keyspace notifications, relying on polling")
	}

	// Save files
	saveStore, err := sqlite.Open(cfg.SaveDBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SaveDBPath).Msg("Save store open failed")
	}
	defer saveStore.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	actionRepo := postgres.NewActionRepo(db)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	wsHub := handler.NewHub()

	// Services
	sessions := service.NewSessionService(gameRepo, actionRepo, redisClient, board, wsHub)
	gameSvc := service.NewGameService(gameRepo, sessions, board, wsHub, cfg.TurnTimeout)
	saveSvc := service.NewSaveService(gameRepo, saveStore, sessions, board)
	timerListener := service.NewTimerListener(redisClient.Underlying(), sessions, gameRepo, redisClient)

	// Handlers
	var googleOAuth *auth.OAuthProvider
	if cfg.GoogleClientID != "" {
		googleOAuth = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		log.Info().Msg("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo, cfg.Dev)
	gameHandler := handler.NewGameHandler(gameSvc)
	sessionHandler := handler.NewSessionHandler(sessions)
	saveHandler := handler.NewSaveHandler(saveSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","component":"postgres"}`))
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","component":"redis"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("GET /auth/google", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("POST /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("POST /games/{id}/join", gameHandler.JoinGame)
	api.HandleFunc("POST /games/{id}/start", gameHandler.StartGame)
	api.HandleFunc("DELETE /games/{id}", gameHandler.DeleteGame)
	api.HandleFunc("GET /games/{id}/state", sessionHandler.State)
	api.HandleFunc("GET /games/{id}/legal-actions", sessionHandler.LegalActions)
	api.HandleFunc("POST /games/{id}/actions", sessionHandler.SubmitAction)
	api.HandleFunc("GET /games/{id}/actions", sessionHandler.ActionHistory)
	api.HandleFunc("POST /games/{id}/undo", sessionHandler.Undo)
	api.HandleFunc("POST /games/{id}/saves", saveHandler.CreateSave)
	api.HandleFunc("GET /games/{id}/saves", saveHandler.ListSaves)
	api.HandleFunc("POST /saves/{saveId}/load", saveHandler.LoadSave)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket authenticates with a query parameter
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	root := middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS(cfg.CORSOrigins...), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rehydrate Redis from Postgres after a restart
	if err := sessions.RecoverActiveGames(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to recover active games (non-fatal)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timerListener.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()
	wsHub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
