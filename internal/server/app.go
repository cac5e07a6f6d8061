package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/config"
	"github.com/ahsanfayaz52/noteservice/internal/handlers"
	"github.com/ahsanfayaz52/noteservice/internal/mail"
	"github.com/ahsanfayaz52/noteservice/internal/middleware"
	"github.com/ahsanfayaz52/noteservice/internal/objectstore"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type AppOptions struct {
	Config  *config.Config
	Store   store.Store
	Objects objectstore.ObjectStore
	Mailer  mail.Mailer
	Log     *slog.Logger

	// Now stamps createdAt on new records. Defaults to time.Now.
	Now        func() time.Time
	BcryptCost int
	Ping       func(ctx context.Context) error
}

// NewApp builds the auth provider, the handlers and the router on top of
// the given backends.
func NewApp(o AppOptions) http.Handler {
	cfg := o.Config
	now := o.Now
	if now == nil {
		now = time.Now
	}

	var providerOpts []auth.ProviderOption
	if o.BcryptCost > 0 {
		providerOpts = append(providerOpts, auth.WithBcryptCost(o.BcryptCost))
	}
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL)
	provider := auth.NewProvider(o.Store, jwtService, o.Mailer, cfg.ResetURL, providerOpts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	users := handlers.NewUserHandler(o.Store, provider, o.Objects, o.Log, cfg.MaxUploadBytes())
	users.SetClock(now)

	d := Deps{
		Todos:          handlers.NewTodoHandler(o.Store, o.Log, now),
		Notes:          handlers.NewNoteHandler(o.Store, o.Log, now),
		Users:          users,
		Verifier:       provider,
		Profiles:       o.Store,
		Metrics:        middleware.NewMetrics(reg),
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins,
		Ping:           o.Ping,
		Log:            o.Log,
	}
	if cfg.ObjectBackend == "dir" {
		d.UploadDir = cfg.UploadDir
	}
	return NewRouter(d)
}
