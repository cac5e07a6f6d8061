package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const purposeReset = "reset"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Username    string `json:"username,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	resetTTL  time.Duration
}

func NewJWTService(secret string, ttl, resetTTL time.Duration) *JWTService {
	return &JWTService{secretKey: []byte(secret), ttl: ttl, resetTTL: resetTTL}
}

// GenerateToken issues a session token for username.
func (j *JWTService) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	return j.sign(claims)
}

// ValidateToken returns the username carried by a session token.
func (j *JWTService) ValidateToken(tokenStr string) (string, error) {
	claims, err := j.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Purpose != "" || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}

// GenerateResetToken issues a password reset token bound to fingerprint.
func (j *JWTService) GenerateResetToken(email, fingerprint string) (string, error) {
	now := time.Now()
	claims := Claims{
		Purpose:     purposeReset,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.resetTTL)),
		},
	}
	return j.sign(claims)
}

func (j *JWTService) ValidateResetToken(tokenStr string) (email, fingerprint string, err error) {
	claims, err := j.parse(tokenStr)
	if err != nil {
		return "", "", err
	}
	if claims.Purpose != purposeReset || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Fingerprint, nil
}

func (j *JWTService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTService) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
