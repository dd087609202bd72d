package nhost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"muroro-livestock/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// HasuraClaims es el namespace que Nhost mete en el access token.
type HasuraClaims struct {
	UserID       string   `json:"x-hasura-user-id"`
	DefaultRole  string   `json:"x-hasura-default-role"`
	AllowedRoles []string `json:"x-hasura-allowed-roles"`
}

type TokenClaims struct {
	Hasura HasuraClaims `json:"https://hasura.io/jwt/claims"`
	Email  string       `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken firma un access token HS256 con la misma forma que los de Nhost.
// Lo usa el backend en memoria.
func IssueToken(secret []byte, user auth.User, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := TokenClaims{
		Hasura: HasuraClaims{
			UserID:       user.ID,
			DefaultRole:  "user",
			AllowedRoles: []string{"user", "me"},
		},
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    "muroro-livestock",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// TokenExpiry lee exp sin verificar la firma (solo para saber cuándo refrescar).
func TokenExpiry(token string) (time.Time, bool) {
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Verifier implementa auth.AuthVerifier:
// - con secret => valida la firma HS256 localmente;
// - sin secret => pregunta a Nhost Auth (GET /user) con el token.
type Verifier struct {
	secret  []byte
	methods []string
	client  *Client
	now     func() time.Time
}

var hmacMethods = []string{"HS256", "HS384", "HS512"}

// NewVerifier acepta el secreto crudo o el JSON que publica Nhost
// ({"type":"HS256","key":"..."}); en ese caso solo vale el algoritmo declarado.
func NewVerifier(secret string, client *Client) (*Verifier, error) {
	key, method, err := ParseSecret(secret)
	if err != nil {
		return nil, err
	}
	v := &Verifier{secret: key, methods: hmacMethods, client: client, now: time.Now}
	if method != "" {
		v.methods = []string{method}
	}
	return v, nil
}

type jwtSecret struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// ParseSecret devuelve la clave HMAC y, si vino en JSON, el algoritmo declarado.
// Vacío => sin clave (se verifica contra /user).
func ParseSecret(raw string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", nil
	}
	if !strings.HasPrefix(raw, "{") {
		return []byte(raw), "", nil
	}

	var s jwtSecret
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, "", fmt.Errorf("nhost jwt secret: %w", err)
	}
	method := strings.ToUpper(strings.TrimSpace(s.Type))
	switch method {
	case "HS256", "HS384", "HS512":
	default:
		return nil, "", fmt.Errorf("nhost jwt secret: unsupported type %q", s.Type)
	}
	if s.Key == "" {
		return nil, "", errors.New("nhost jwt secret: key is empty")
	}
	return []byte(s.Key), method, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	if len(v.secret) > 0 {
		return v.verifyLocal(token)
	}
	if v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}

	u, err := v.client.Me(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("nhost verify failed: %w", err)
	}
	if strings.TrimSpace(u.ID) == "" {
		return auth.Claims{}, fmt.Errorf("%w: user without id", auth.ErrUnauthorized)
	}
	exp, _ := TokenExpiry(token)
	return auth.Claims{UserID: u.ID, Email: u.Email, Role: "user", ExpiresAt: exp}, nil
}

func (v *Verifier) verifyLocal(token string) (auth.Claims, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrUnauthorized, err)
	}

	uid := strings.TrimSpace(claims.Hasura.UserID)
	if uid == "" {
		uid = strings.TrimSpace(claims.Subject)
	}
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: token without user id", auth.ErrUnauthorized)
	}

	out := auth.Claims{
		UserID: uid,
		Email:  claims.Email,
		Role:   claims.Hasura.DefaultRole,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
