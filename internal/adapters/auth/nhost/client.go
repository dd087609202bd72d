package nhost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"muroro-livestock/internal/platform/httpclient"
	"muroro-livestock/internal/platform/logger"
	"muroro-livestock/internal/platform/metrics"
	"muroro-livestock/internal/ports/auth"
)

var ErrNotConfigured = errors.New("nhost auth client not configured")

// Config del cliente de Nhost Auth. BaseURL incluye /v1 (ver config.NhostConfig.AuthBaseURL).
type Config struct {
	BaseURL string
	Timeout time.Duration

	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// Client implementa auth.Authenticator contra los endpoints REST de Nhost Auth.
type Client struct {
	http    *httpclient.Client
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("nhost auth: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:    hc,
		metrics: cfg.Metrics,
		log:     log.With(map[string]any{"component": "nhost_auth"}),
		now:     time.Now,
	}, nil
}

// payloads de Nhost Auth

type sessionPayload struct {
	AccessToken          string      `json:"accessToken"`
	AccessTokenExpiresIn int64       `json:"accessTokenExpiresIn"`
	RefreshToken         string      `json:"refreshToken"`
	User                 userPayload `json:"user"`
}

type userPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type sessionEnvelope struct {
	Session *sessionPayload `json:"session"`
}

type signUpOptions struct {
	DisplayName string         `json:"displayName,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type signUpRequest struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Options  signUpOptions `json:"options"`
}

func (c *Client) SignUp(ctx context.Context, in auth.SignUpInput) (auth.SignUpResult, error) {
	var out sessionEnvelope
	err := c.call(ctx, "signup", "/signup/email-password", signUpRequest{
		Email:    in.Email,
		Password: in.Password,
		Options: signUpOptions{
			DisplayName: in.DisplayName,
			Metadata:    in.Metadata,
		},
	}, &out)
	if err != nil {
		return auth.SignUpResult{}, err
	}

	// session null => el proyecto exige verificar el email antes de entrar.
	if out.Session == nil || out.Session.AccessToken == "" {
		return auth.SignUpResult{NeedsEmailVerification: true}, nil
	}
	s := c.toSession(*out.Session)
	return auth.SignUpResult{Session: &s}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	var out sessionEnvelope
	err := c.call(ctx, "signin", "/signin/email-password", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return auth.Session{}, err
	}
	if out.Session == nil || out.Session.AccessToken == "" {
		// MFA o verificación pendiente: no hay sesión utilizable.
		return auth.Session{}, &auth.Error{
			Code:    "no-session",
			Message: "Please check your email for verification link",
			Err:     auth.ErrUnauthorized,
		}
	}
	return c.toSession(*out.Session), nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return c.call(ctx, "signout", "/signout", map[string]string{"refreshToken": refreshToken}, nil)
}

// Refresh cambia el refresh token por una sesión nueva (POST /token).
func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.Session, error) {
	var out sessionPayload
	if err := c.call(ctx, "refresh", "/token", map[string]string{"refreshToken": refreshToken}, &out); err != nil {
		return auth.Session{}, err
	}
	if out.AccessToken == "" {
		return auth.Session{}, &auth.Error{Message: "empty session from token endpoint", Err: auth.ErrUpstream}
	}
	return c.toSession(out), nil
}

// Me consulta GET /user con el access token. Lo usa el Verifier cuando no hay secreto JWT.
func (c *Client) Me(ctx context.Context, accessToken string) (auth.User, error) {
	var out userPayload
	if err := c.do(ctx, "user", http.MethodGet, "/user", httpclient.Bearer(accessToken), nil, &out); err != nil {
		return auth.User{}, err
	}
	return auth.User{ID: out.ID, Email: out.Email, DisplayName: out.DisplayName}, nil
}

func (c *Client) call(ctx context.Context, op, path string, in, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, in, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, headers map[string]string, in, out any) error {
	start := time.Now()
	err := c.http.DoJSON(ctx, method, path, headers, in, out)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	c.metrics.ObserveUpstream("auth_"+op, outcome, time.Since(start))

	if err != nil {
		mapped := mapError(err)
		c.log.Debug("nhost auth call failed", map[string]any{"op": op, "err": err})
		return mapped
	}
	return nil
}

// mapError conserva el mensaje de Nhost tal cual y clasifica:
// 4xx (salvo 429) => ErrUnauthorized, el resto => ErrUpstream.
func mapError(err error) error {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		kind := auth.ErrUpstream
		if he.ClientError() {
			kind = auth.ErrUnauthorized
		}
		return &auth.Error{Code: he.Code, Message: he.Error(), Err: kind}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &auth.Error{Message: err.Error(), Err: auth.ErrUpstream}
}

func (c *Client) toSession(p sessionPayload) auth.Session {
	exp := c.now().Add(time.Duration(p.AccessTokenExpiresIn) * time.Second)
	if p.AccessTokenExpiresIn <= 0 {
		// Sin expiresIn, tomamos el exp del propio JWT.
		if t, ok := TokenExpiry(p.AccessToken); ok {
			exp = t
		}
	}
	return auth.Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    exp,
		User: auth.User{
			ID:          p.User.ID,
			Email:       p.User.Email,
			DisplayName: p.User.DisplayName,
		},
	}
}
