package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/sport_academy/internal/config"
	"github.com/Skotchmaster/sport_academy/internal/events"
	"github.com/Skotchmaster/sport_academy/internal/httpserver"
	"github.com/Skotchmaster/sport_academy/internal/repo"
	"github.com/Skotchmaster/sport_academy/internal/search"
	"github.com/Skotchmaster/sport_academy/internal/service"
	"github.com/Skotchmaster/sport_academy/internal/token"
	pkgdb "github.com/Skotchmaster/sport_academy/pkg/db"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

func openStore(ctx context.Context, cfg *config.Config) (repo.Store, error) {
	if cfg.StoreDriver == "mongo" {
		client, err := pkgdb.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return repo.NewMongoRepo(client, cfg.MongoDB), nil
	}

	db, err := pkgdb.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	r := repo.NewGormRepo(db)
	if err := r.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		pub = prod
	}

	var idx search.Index
	if cfg.SearchEnabled() {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		idx = search.NewElasticIndex(es, search.DefaultIndex)
	}

	tokens := token.NewService(cfg.JWTAccessSecret)
	svc := service.NewAcademyService(store, pub, idx)

	e := httpserver.NewEcho(logger)
	httpserver.Register(e, &httpserver.Deps{
		AcademyHandler: &httpserver.AcademyHTTP{Svc: svc},
		AuthHandler:    &httpserver.AuthHTTP{Tokens: tokens},
		Verifier:       tokens,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("academy listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("store close error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
