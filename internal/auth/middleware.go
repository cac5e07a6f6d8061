package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ahsanfayaz52/noteservice/internal/models"
)

type key int

const (
	UsernameKey key = iota
	UserKey
)

type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type UserFinder interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// JWTMiddleware admits requests with a valid "Bearer <token>" header whose
// user still has a profile. Everything else gets 403.
func JWTMiddleware(verifier TokenVerifier, users UserFinder, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.WarnContext(r.Context(), "missing or malformed authorization header", slog.String("path", r.URL.Path))
				forbidden(w)
				return
			}

			username, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				log.WarnContext(r.Context(), "rejected token", slog.String("error", err.Error()))
				forbidden(w)
				return
			}

			user, err := users.GetUser(r.Context(), username)
			if err != nil {
				log.WarnContext(r.Context(), "token for unknown user",
					slog.String("username", username),
					slog.String("error", err.Error()),
				)
				forbidden(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

func GetUsernameFromContext(ctx context.Context) string {
	username, ok := ctx.Value(UsernameKey).(string)
	if !ok {
		return ""
	}
	return username
}

func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// WithUser returns ctx carrying user as the authenticated caller.
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UsernameKey, user.Username)
	return context.WithValue(ctx, UserKey, user)
}
