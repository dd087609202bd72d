// Package session resuelve la sesión del navegador (cookie firmada + cifrada) contra el
// backend de auth y la deja en el context del request.
package session

import (
	"context"
	"net/http"
	"strings"
)

// Status de la sesión. Arranca en loading y se resuelve una sola vez por request.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State es lo que ven guards, páginas y API.
type State struct {
	Status      Status
	UserID      string
	Email       string
	DisplayName string

	// AccessToken va como Bearer al GraphQL. Nunca se renderiza.
	AccessToken string
}

func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && strings.TrimSpace(s.UserID) != ""
}

// Owner devuelve el userId solo si la sesión está autenticada.
func (s State) Owner() string {
	if !s.Authenticated() {
		return ""
	}
	return s.UserID
}

// Loading es el estado inicial (antes de bootstrap).
func Loading() State { return State{Status: StatusLoading} }

func Unauthenticated() State { return State{Status: StatusUnauthenticated} }

// SignUpResult: si NeedsEmailVerification, State queda unauthenticated.
type SignUpResult struct {
	NeedsEmailVerification bool
	State                  State
}

type ctxKey struct{}

func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext devuelve loading si el middleware de sesión todavía no corrió.
func FromContext(ctx context.Context) State {
	s, ok := ctx.Value(ctxKey{}).(State)
	if !ok {
		return Loading()
	}
	return s
}

// Provider es la capacidad de sesión que se inyecta en el router (los tests usan un fake).
type Provider interface {
	// Bootstrap resuelve loading -> authenticated|unauthenticated para este request.
	// Puede quedar en loading si el backend no respondió al refrescar el token.
	Bootstrap(w http.ResponseWriter, r *http.Request) State

	SignIn(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (State, error)
	SignUp(ctx context.Context, w http.ResponseWriter, r *http.Request, in SignUpInput) (SignUpResult, error)

	// SignOut invalida la cookie antes de devolver; el aviso al backend es best-effort.
	SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) State
}

// SignUpInput es lo que junta el formulario de registro.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// DisplayName: "first last" recortado.
func (in SignUpInput) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName))
}
