// Package auth implements the shared-login credential check and bearer
// token lifecycle for the inventory service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any rejected login or token.
// It is deliberately generic: callers must not learn which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenTTL is the bearer token lifetime.
const TokenTTL = 7 * 24 * time.Hour

// SecretStore is the persistence needed by the authenticator.
type SecretStore interface {
	GetAuthSecret(ctx context.Context) (username, passwordHash string, err error)
	InitAuthSecret(ctx context.Context, username, passwordHash string) error
	SetAuthSecret(ctx context.Context, username, passwordHash string) error
}

// Authenticator verifies the shared login and issues signed tokens.
type Authenticator struct {
	store     SecretStore
	jwtSecret []byte
}

// New creates an Authenticator signing with jwtSecret.
func New(store SecretStore, jwtSecret string) *Authenticator {
	return &Authenticator{store: store, jwtSecret: []byte(jwtSecret)}
}

// InitSharedLogin creates the shared login row on first run when both env
// values are provided. Missing values are not fatal; the credential can be
// initialized later.
func (a *Authenticator) InitSharedLogin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.store.InitAuthSecret(ctx, username, string(hash))
}

// Login verifies the credential pair and returns a signed bearer token.
// Any mismatch returns ErrInvalidCredentials without detail.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	storedUser, storedHash, err := a.store.GetAuthSecret(ctx)
	if err != nil {
		return "", err
	}
	if username != storedUser {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.issueToken()
}

// ChangeLogin replaces the shared credential.
func (a *Authenticator) ChangeLogin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.store.SetAuthSecret(ctx, username, string(hash))
}

func (a *Authenticator) issueToken() (string, error) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks a bearer token's signature and expiry.
func (a *Authenticator) VerifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCredentials
	}
	return nil
}
