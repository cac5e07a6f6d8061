// Package server assembles the HTTP surface of the service.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/handlers"
	"github.com/ahsanfayaz52/noteservice/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Todos *handlers.TodoHandler
	Notes *handlers.NoteHandler
	Users *handlers.UserHandler

	Verifier auth.TokenVerifier
	Profiles auth.UserFinder

	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer

	AllowedOrigins []string
	// UploadDir is served under /uploads/ when non-empty.
	UploadDir string
	// Ping reports whether the backing store is reachable. Optional.
	Ping func(ctx context.Context) error

	Log *slog.Logger
}

// NewRouter wires every route. Login, signup, reset, health and metrics
// are public; everything else requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.HandleFunc("/healthz", healthz(d.Ping)).Methods(http.MethodGet)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.HandleFunc("/login", d.Users.Login).Methods(http.MethodPost)
	r.HandleFunc("/signup", d.Users.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/reset", d.Users.ResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset/confirm", d.Users.ConfirmPasswordReset).Methods(http.MethodPost)

	if d.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	// Authenticated routes
	s := r.PathPrefix("/").Subrouter()
	s.Use(auth.JWTMiddleware(d.Verifier, d.Profiles, d.Log))

	s.HandleFunc("/todos", d.Todos.List).Methods(http.MethodGet)
	s.HandleFunc("/todo", d.Todos.Create).Methods(http.MethodPost)
	s.HandleFunc("/todo/{todoId}", d.Todos.Get).Methods(http.MethodGet)
	s.HandleFunc("/todo/{todoId}", d.Todos.Update).Methods(http.MethodPut)
	s.HandleFunc("/todo/{todoId}", d.Todos.Delete).Methods(http.MethodDelete)

	s.HandleFunc("/notes", d.Notes.List).Methods(http.MethodGet)
	s.HandleFunc("/notes", d.Notes.Create).Methods(http.MethodPost)
	s.HandleFunc("/note/{noteId}", d.Notes.Get).Methods(http.MethodGet)
	s.HandleFunc("/note/{noteId}", d.Notes.Update).Methods(http.MethodPut)
	s.HandleFunc("/note/{noteId}", d.Notes.Delete).Methods(http.MethodDelete)

	s.HandleFunc("/user", d.Users.GetUser).Methods(http.MethodGet)
	s.HandleFunc("/user", d.Users.UpdateUser).Methods(http.MethodPost)
	s.HandleFunc("/user/image", d.Users.UploadImage).Methods(http.MethodPost)

	// mux only runs Use middleware on matched routes, so these wrap the
	// router from outside.
	var h http.Handler = r
	h = middleware.CORS(d.AllowedOrigins)(h)
	h = middleware.Recoverer(d.Log)(h)
	h = middleware.Logger(d.Log)(h)
	h = middleware.RequestID(h)
	return h
}

func healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
