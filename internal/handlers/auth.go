package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/objectstore"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"github.com/ahsanfayaz52/noteservice/internal/validation"
)

const (
	msgUsernameTaken    = "This username is already taken."
	msgEmailInUse       = "Email is already in use"
	msgWrongCredentials = "Wrong credentials. Try again."
	msgUserNotFound     = "User not found"
)

// AuthProvider manages credentials on behalf of the user handlers.
type AuthProvider interface {
	CreateAccount(ctx context.Context, email, password, username string) (string, error)
	DeleteAccount(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type UserHandler struct {
	users         store.UserStore
	auth          AuthProvider
	objects       objectstore.ObjectStore
	log           *slog.Logger
	now           func() time.Time
	maxImageBytes int64
}

func NewUserHandler(users store.UserStore, provider AuthProvider, objects objectstore.ObjectStore, log *slog.Logger, maxImageBytes int64) *UserHandler {
	return &UserHandler{
		users:         users,
		auth:          provider,
		objects:       objects,
		log:           log,
		now:           time.Now,
		maxImageBytes: maxImageBytes,
	}
}

// SetClock replaces the source of signup timestamps.
func (h *UserHandler) SetClock(now func() time.Time) {
	h.now = now
}

func general(msg string) map[string]string {
	return map[string]string{"general": msg}
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.SignUp")
	ctx := r.Context()

	var req validation.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Normalize()
	if res := validation.ValidateSignUpData(req); !res.Valid {
		writeJSON(w, http.StatusBadRequest, res.Errors)
		return
	}

	_, err := h.users.GetUser(ctx, req.Username)
	switch {
	case err == nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"username": msgUsernameTaken})
		return
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to look up username", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, general(msgSomethingBad))
		return
	}

	token, err := h.auth.CreateAccount(ctx, req.Email, req.Password, req.Username)
	if errors.Is(err, auth.ErrEmailInUse) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"email": msgEmailInUse})
		return
	}
	if err != nil {
		log.Error("failed to create account", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, general(msgSomethingBad))
		return
	}

	user := &models.User{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		CreatedAt:   h.now().UTC(),
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		if rbErr := h.auth.DeleteAccount(ctx, req.Email); rbErr != nil {
			log.Error("failed to roll back account", slog.String("error", rbErr.Error()))
		}
		if errors.Is(err, store.ErrDuplicate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"username": msgUsernameTaken})
			return
		}
		log.Error("failed to create profile", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, general(msgSomethingBad))
		return
	}

	log.Info("user signed up", slog.String("username", user.Username))
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.Login")
	ctx := r.Context()

	var req validation.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Normalize()
	if res := validation.ValidateLoginData(req); !res.Valid {
		writeJSON(w, http.StatusBadRequest, res.Errors)
		return
	}

	// Unknown email and wrong password get the same answer on purpose;
	// only the log tells them apart.
	if _, err := h.users.GetUserByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login rejected", slog.String("reason", "user not found"))
			writeJSON(w, http.StatusForbidden, general(msgWrongCredentials))
			return
		}
		log.Error("failed to look up email", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, general(msgSomethingBad))
		return
	}

	token, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Info("login rejected", slog.String("reason", "invalid credentials"))
		writeJSON(w, http.StatusForbidden, general(msgWrongCredentials))
		return
	}
	if err != nil {
		log.Error("failed to sign in", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, general(msgSomethingBad))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.ResetPassword")
	ctx := r.Context()

	var req validation.ResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Normalize()
	if res := validation.ValidateResetData(req); !res.Valid {
		writeJSON(w, http.StatusBadRequest, res.Errors)
		return
	}

	if _, err := h.users.GetUserByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		log.Error("failed to look up email", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}

	if err := h.auth.SendPasswordReset(ctx, req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		log.Error("failed to send password reset", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to send password reset email")
		return
	}
	writeMessage(w, "Password reset email sent")
}

func (h *UserHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.ConfirmPasswordReset")

	var req validation.ResetConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Normalize()
	if res := validation.ValidateResetConfirmData(req); !res.Valid {
		writeJSON(w, http.StatusBadRequest, res.Errors)
		return
	}

	err := h.auth.ConfirmPasswordReset(r.Context(), req.Token, req.Password)
	if errors.Is(err, auth.ErrInvalidToken) {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if err != nil {
		log.Error("failed to reset password", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeMessage(w, "Password updated successfully")
}
