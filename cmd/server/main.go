package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahsanfayaz52/noteservice/internal/config"
	"github.com/ahsanfayaz52/noteservice/internal/db"
	"github.com/ahsanfayaz52/noteservice/internal/mail"
	"github.com/ahsanfayaz52/noteservice/internal/objectstore"
	"github.com/ahsanfayaz52/noteservice/internal/server"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"github.com/ahsanfayaz52/noteservice/internal/store/memory"
	mysqlstore "github.com/ahsanfayaz52/noteservice/internal/store/mysql"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting noteservice", slog.String("env", cfg.Env), slog.String("store", cfg.StoreDriver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, ping, closeStore, err := openStore(ctx, cfg.StorageConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	objects, err := openObjectStore(ctx, cfg.ObjectStoreConfig())
	if err != nil {
		return err
	}

	handler := server.NewApp(server.AppOptions{
		Config:  cfg,
		Store:   st,
		Objects: objects,
		Mailer:  mail.NewLogMailer(log.With(slog.String("component", "mail"))),
		Log:     log,
		Ping:    ping,
	})

	return server.New(cfg.Addr(), handler, log, cfg.ShutdownTimeout).Run(ctx)
}

func openStore(ctx context.Context, sc config.StorageConfig) (store.Store, func(context.Context) error, func(), error) {
	if sc.Driver == config.DriverMemory {
		return memory.New(), nil, func() {}, nil
	}

	conn, err := db.InitDB(ctx, sc.User, sc.Password, sc.Host, sc.Name)
	if err != nil {
		return nil, nil, nil, err
	}
	return mysqlstore.New(conn), conn.PingContext, func() { conn.Close() }, nil
}

func openObjectStore(ctx context.Context, oc objectstore.Config) (objectstore.ObjectStore, error) {
	if oc.Backend == "s3" {
		return objectstore.NewS3(ctx, oc)
	}
	return objectstore.NewDir(oc.Dir, oc.PublicBaseURL)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
