package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/enem-prep/backend/internal/auth"
	"github.com/enem-prep/backend/internal/cache"
	"github.com/enem-prep/backend/internal/config"
	"github.com/enem-prep/backend/internal/database"
	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/items"
	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", "err", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", "err", err)
	}

	// Item sources, in priority order
	store := items.NewStore(db)
	var primary exam.ItemSource = store
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Warn("booklet cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer rdb.Close()
			primary = cache.NewBookletCache(store, rdb, cfg.BookletCacheTTL, log)
		}
	}

	sources := []exam.ItemSource{primary}
	var localDB *sql.DB
	if cfg.LocalBankPath != "" {
		localDB, err = database.OpenLocal(cfg.LocalBankPath)
		if err != nil {
			log.Warn("local item bank unavailable", "path", cfg.LocalBankPath, "err", err)
		} else {
			defer localDB.Close()
			sources = append(sources, items.NewLocalStore(localDB))
		}
	}

	// Initialize handlers
	secret := []byte(cfg.JWTSecret)
	authHandler := auth.NewHandler(db, secret, log)
	service := items.NewService(store, exam.NewAssembler(log, sources...), items.ServiceConfig{
		CalibrationMinResponses: cfg.CalibrationMinResponses,
		CalibrationWorkers:      cfg.CalibrationWorkers,
	}, log)
	itemsHandler := items.NewHandler(service, log)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	api.HandleFunc("/exams/modes", itemsHandler.ListModes).Methods("GET")
	api.HandleFunc("/scores/convert", itemsHandler.ConvertScore).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(func(token string) (int64, error) {
		return auth.ParseToken(secret, token)
	}))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentCandidate).Methods("GET")

	// Exams
	protected.HandleFunc("/exams", itemsHandler.GenerateExam).Methods("POST")
	protected.HandleFunc("/exams/{id}", itemsHandler.GetExam).Methods("GET")

	// Scoring
	protected.HandleFunc("/proficiency/estimate", itemsHandler.EstimateProficiency).Methods("POST")
	protected.HandleFunc("/adaptive/sequence", itemsHandler.AdaptiveSequence).Methods("POST")

	// Responses & calibration
	protected.HandleFunc("/responses", itemsHandler.RecordResponse).Methods("POST")
	protected.HandleFunc("/items/{id}/calibrate", itemsHandler.CalibrateItem).Methods("POST")
	protected.HandleFunc("/calibrations/run", itemsHandler.RunCalibration).Methods("POST")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "sources", len(sources))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	log.Info("server stopped")
}
