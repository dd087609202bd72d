// Package memory es el backend de auth para desarrollo: usuarios en memoria con bcrypt
// y access tokens HS256 con la misma forma que los de Nhost.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"muroro-livestock/internal/adapters/auth/nhost"
	"muroro-livestock/internal/ports/auth"
)

const (
	DefaultAccessTTL = 15 * time.Minute
	minPasswordLen   = 9
)

type Options struct {
	// Secret firma los access tokens; el mismo valor va a nhost.NewVerifier.
	Secret    string
	AccessTTL time.Duration
	// RequireVerification simula proyectos que exigen confirmar el email.
	RequireVerification bool
}

type user struct {
	auth.User
	hash     []byte
	verified bool
}

// Authenticator implementa auth.Authenticator.
type Authenticator struct {
	secret              []byte
	ttl                 time.Duration
	requireVerification bool
	now                 func() time.Time

	mu      sync.Mutex
	byEmail map[string]*user
	// refresh token -> user id
	refresh map[string]string
}

func New(opts Options) (*Authenticator, error) {
	if len(strings.TrimSpace(opts.Secret)) < 16 {
		return nil, errors.New("memory auth: secret too short")
	}
	ttl := opts.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &Authenticator{
		secret:              []byte(strings.TrimSpace(opts.Secret)),
		ttl:                 ttl,
		requireVerification: opts.RequireVerification,
		now:                 time.Now,
		byEmail:             map[string]*user{},
		refresh:             map[string]string{},
	}, nil
}

func authErr(code, msg string, kind error) error {
	return &auth.Error{Code: code, Message: msg, Err: kind}
}

func (a *Authenticator) SignUp(ctx context.Context, in auth.SignUpInput) (auth.SignUpResult, error) {
	email := normalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return auth.SignUpResult{}, authErr("invalid-email", "Email is incorrectly formatted", auth.ErrUnauthorized)
	}
	if len(in.Password) < minPasswordLen {
		return auth.SignUpResult{}, authErr("invalid-password", "Password is too short", auth.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.SignUpResult{}, authErr("internal-error", err.Error(), auth.ErrUpstream)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.byEmail[email]; exists {
		return auth.SignUpResult{}, authErr("email-already-in-use", "Email already in use", auth.ErrUnauthorized)
	}

	u := &user{
		User: auth.User{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: strings.TrimSpace(in.DisplayName),
		},
		hash:     hash,
		verified: !a.requireVerification,
	}
	a.byEmail[email] = u

	if !u.verified {
		return auth.SignUpResult{NeedsEmailVerification: true}, nil
	}
	s, err := a.issueLocked(u.User)
	if err != nil {
		return auth.SignUpResult{}, err
	}
	return auth.SignUpResult{Session: &s}, nil
}

func (a *Authenticator) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	a.mu.Lock()
	u, ok := a.byEmail[normalizeEmail(email)]
	a.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return auth.Session{}, authErr("invalid-email-password", "Incorrect email or password", auth.ErrUnauthorized)
	}
	if !u.verified {
		return auth.Session{}, authErr("unverified-user", "Email is not verified", auth.ErrUnauthorized)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.issueLocked(u.User)
}

func (a *Authenticator) SignOut(ctx context.Context, refreshToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.refresh, refreshToken)
	return nil
}

// Refresh rota el refresh token: el viejo deja de servir.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (auth.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	uid, ok := a.refresh[refreshToken]
	if !ok {
		return auth.Session{}, authErr("invalid-refresh-token", "Invalid or expired refresh token", auth.ErrUnauthorized)
	}
	delete(a.refresh, refreshToken)

	for _, u := range a.byEmail {
		if u.ID == uid {
			return a.issueLocked(u.User)
		}
	}
	return auth.Session{}, authErr("invalid-refresh-token", "Invalid or expired refresh token", auth.ErrUnauthorized)
}

// Verify marca como verificado un email (equivale a seguir el link del correo).
func (a *Authenticator) Verify(email string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.byEmail[normalizeEmail(email)]
	if ok {
		u.verified = true
	}
	return ok
}

func (a *Authenticator) issueLocked(u auth.User) (auth.Session, error) {
	tok, exp, err := nhost.IssueToken(a.secret, u, a.now(), a.ttl)
	if err != nil {
		return auth.Session{}, authErr("internal-error", err.Error(), auth.ErrUpstream)
	}
	rt := uuid.NewString()
	a.refresh[rt] = u.ID
	return auth.Session{
		AccessToken:  tok,
		RefreshToken: rt,
		ExpiresAt:    exp,
		User:         u,
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
