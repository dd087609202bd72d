package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnauthorized: credenciales inválidas, token vencido o refresh rechazado.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstream: el backend de auth falló por motivos no atribuibles al usuario.
	ErrUpstream = errors.New("auth upstream error")
)

// Error lleva el mensaje que reporta el backend, tal cual, para mostrarlo en el formulario.
type Error struct {
	Code    string
	Message string
	Err     error // ErrUnauthorized / ErrUpstream
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "authentication error"
}

func (e *Error) Unwrap() error { return e.Err }

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Authenticator es el contrato con el endpoint de sesiones (Nhost Auth o el backend en memoria).
type Authenticator interface {
	SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (Session, error)
}

type tokenKey struct{}

// WithAccessToken deja el access token del request en el context para que
// el cliente GraphQL lo adjunte como Bearer.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

func AccessToken(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}
