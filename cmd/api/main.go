// Command api runs the greetly HTTP service.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"greetly.org/internal/auth"
	"greetly.org/internal/config"
	"greetly.org/internal/greeting"
	"greetly.org/internal/httpapi"
	"greetly.org/internal/obs"
)

var version = "0.1.0"

func main() {
	obs.Init()
	logger := obs.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf(`{"level":"fatal","msg":"config load failed","error":%q}`, err.Error())
	}

	var (
		users auth.UserStore
		probe = func() error { return nil }
	)
	if cfg.DatabaseDSN != "" {
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf(`{"level":"fatal","msg":"database open failed","error":%q}`, err.Error())
		}
		defer db.Close()
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
		users = auth.NewPGUserStore(db)
		probe = db.Ping
	} else {
		users = auth.NewMemoryUserStore()
	}

	svc, err := auth.NewService(users, []byte(cfg.Auth.SigningKey),
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithRenewAfter(cfg.Auth.RenewAfter),
	)
	if err != nil {
		logger.Fatalf(`{"level":"fatal","msg":"auth service init failed","error":%q}`, err.Error())
	}

	api := httpapi.New(svc, users, greeting.NewMemoryRepository(),
		httpapi.WithReadyProbe(probe),
		httpapi.WithVersion(version),
		httpapi.WithRateLimit(cfg.RatePerSec, cfg.RateBurst),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.LogRequest(map[string]any{
			"ts":      time.Now().UTC().Format(time.RFC3339Nano),
			"level":   "info",
			"msg":     "listening",
			"addr":    cfg.Addr,
			"version": version,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf(`{"level":"fatal","msg":"server failed","error":%q}`, err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf(`{"level":"error","msg":"shutdown failed","error":%q}`, err.Error())
	}
}
