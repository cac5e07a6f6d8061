package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/mail"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Provider owns credentials: accounts, password hashes, session and reset tokens.
type Provider struct {
	accounts   store.AccountStore
	jwt        *JWTService
	mailer     mail.Mailer
	resetURL   string
	bcryptCost int
}

type ProviderOption func(*Provider)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) ProviderOption {
	return func(p *Provider) { p.bcryptCost = cost }
}

func NewProvider(accounts store.AccountStore, jwtService *JWTService, mailer mail.Mailer, resetURL string, opts ...ProviderOption) *Provider {
	p := &Provider{
		accounts:   accounts,
		jwt:        jwtService,
		mailer:     mailer,
		resetURL:   resetURL,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateAccount registers email/password for username and returns a session token.
func (p *Provider) CreateAccount(ctx context.Context, email, password, username string) (string, error) {
	const op = "auth.CreateAccount"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: hash password: %w", op, err)
	}

	err = p.accounts.CreateAccount(ctx, &models.Account{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return "", ErrEmailInUse
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := p.jwt.GenerateToken(username)
	if err != nil {
		return "", fmt.Errorf("%s: token: %w", op, err)
	}
	return token, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, email string) error {
	return p.accounts.DeleteAccount(ctx, email)
}

// SignIn checks the password and returns a fresh session token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	const op = "auth.SignIn"

	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := p.jwt.GenerateToken(account.Username)
	if err != nil {
		return "", fmt.Errorf("%s: token: %w", op, err)
	}
	return token, nil
}

// VerifyToken resolves a session token to its username.
func (p *Provider) VerifyToken(token string) (string, error) {
	return p.jwt.ValidateToken(token)
}

// SendPasswordReset mails a single-use reset link to email.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	const op = "auth.SendPasswordReset"

	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := p.jwt.GenerateResetToken(email, fingerprint(account.PasswordHash))
	if err != nil {
		return fmt.Errorf("%s: token: %w", op, err)
	}

	link := p.resetURL + "?token=" + url.QueryEscape(token)
	err = p.mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: "Reset your password",
		Body:    "Follow this link to choose a new password: " + link,
	})
	if err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password. The token stops working once
// the stored hash changes.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	const op = "auth.ConfirmPasswordReset"

	email, fp, err := p.jwt.ValidateResetToken(token)
	if err != nil {
		return ErrInvalidToken
	}

	account, err := p.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if fingerprint(account.PasswordHash) != fp {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: hash password: %w", op, err)
	}
	if err := p.accounts.UpdatePasswordHash(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func fingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
