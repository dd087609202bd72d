package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"

	"muroro-livestock/internal/platform/logger"
	"muroro-livestock/internal/ports/auth"
)

const (
	keyUserID       = "uid"
	keyEmail        = "email"
	keyDisplayName  = "name"
	keyAccessToken  = "at"
	keyRefreshToken = "rt"
	keyExpiresAt    = "exp"

	// Se refresca un poco antes de que venza para no mandar un token muerto al GraphQL.
	defaultRefreshSkew = 30 * time.Second
)

type Options struct {
	Secret     string
	CookieName string
	Secure     bool
	MaxAge     int

	Authenticator auth.Authenticator
	Logger        logger.Logger
}

// CookieProvider guarda tokens y usuario en una cookie gorilla/sessions.
type CookieProvider struct {
	store *sessions.CookieStore
	name  string
	auth  auth.Authenticator
	log   logger.Logger

	now         func() time.Time
	refreshSkew time.Duration
}

func NewCookieProvider(opts Options) (*CookieProvider, error) {
	if opts.Authenticator == nil {
		return nil, errors.New("session: authenticator required")
	}
	if len(opts.Secret) < 16 {
		return nil, errors.New("session: secret too short")
	}
	name := strings.TrimSpace(opts.CookieName)
	if name == "" {
		name = "muroro_session"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	hashKey, blockKey, err := deriveKeys(opts.Secret)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.MaxAge(opts.MaxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &CookieProvider{
		store:       store,
		name:        name,
		auth:        opts.Authenticator,
		log:         log.With(map[string]any{"component": "session"}),
		now:         time.Now,
		refreshSkew: defaultRefreshSkew,
	}, nil
}

// deriveKeys saca la clave HMAC (64 bytes) y la de AES (32 bytes) del secreto configurado.
func deriveKeys(secret string) ([]byte, []byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("muroro-session-cookie"))
	hashKey := make([]byte, 64)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("session: derive keys: %w", err)
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("session: derive keys: %w", err)
	}
	return hashKey, blockKey, nil
}

func (p *CookieProvider) Bootstrap(w http.ResponseWriter, r *http.Request) State {
	sess, err := p.store.Get(r, p.name)
	if err != nil {
		// Cookie vieja o con otra clave: se trata como sin sesión.
		p.log.Debug("discarding unreadable session cookie", map[string]any{"err": err})
	}

	uid, _ := sess.Values[keyUserID].(string)
	if strings.TrimSpace(uid) == "" {
		return Unauthenticated()
	}

	exp, _ := sess.Values[keyExpiresAt].(int64)
	if exp > 0 && p.now().Add(p.refreshSkew).Before(time.Unix(exp, 0)) {
		return stateFrom(sess)
	}

	rt, _ := sess.Values[keyRefreshToken].(string)
	if strings.TrimSpace(rt) == "" {
		p.clear(w, r, sess)
		return Unauthenticated()
	}

	refreshed, err := p.auth.Refresh(r.Context(), rt)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			p.log.Info("refresh token rejected, signing out", map[string]any{"user_id": uid})
			p.clear(w, r, sess)
			return Unauthenticated()
		}
		// Falla transitoria: no echamos al usuario, la página de loading reintenta.
		p.log.Warn("session refresh failed", map[string]any{"user_id": uid, "err": err})
		return Loading()
	}

	if err := p.save(w, r, sess, refreshed); err != nil {
		p.log.Error("saving refreshed session failed", map[string]any{"err": err})
		return Loading()
	}
	return stateFrom(sess)
}

func (p *CookieProvider) SignIn(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (State, error) {
	s, err := p.auth.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return Unauthenticated(), err
	}
	return p.establish(w, r, s)
}

func (p *CookieProvider) SignUp(ctx context.Context, w http.ResponseWriter, r *http.Request, in SignUpInput) (SignUpResult, error) {
	res, err := p.auth.SignUp(ctx, auth.SignUpInput{
		Email:       strings.TrimSpace(in.Email),
		Password:    in.Password,
		DisplayName: in.DisplayName(),
		Metadata: map[string]any{
			"firstName": strings.TrimSpace(in.FirstName),
			"lastName":  strings.TrimSpace(in.LastName),
		},
	})
	if err != nil {
		return SignUpResult{State: Unauthenticated()}, err
	}
	if res.NeedsEmailVerification || res.Session == nil {
		return SignUpResult{NeedsEmailVerification: true, State: Unauthenticated()}, nil
	}

	st, err := p.establish(w, r, *res.Session)
	if err != nil {
		return SignUpResult{State: Unauthenticated()}, err
	}
	return SignUpResult{State: st}, nil
}

func (p *CookieProvider) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) State {
	sess, _ := p.store.Get(r, p.name)
	rt, _ := sess.Values[keyRefreshToken].(string)
	uid, _ := sess.Values[keyUserID].(string)

	// Primero se invalida la identidad local; después se avisa al backend.
	p.clear(w, r, sess)

	if strings.TrimSpace(rt) != "" {
		if err := p.auth.SignOut(ctx, rt); err != nil {
			p.log.Warn("upstream sign-out failed", map[string]any{"user_id": uid, "err": err})
		}
	}
	return Unauthenticated()
}

func (p *CookieProvider) establish(w http.ResponseWriter, r *http.Request, s auth.Session) (State, error) {
	sess, _ := p.store.Get(r, p.name)
	if err := p.save(w, r, sess, s); err != nil {
		return Unauthenticated(), fmt.Errorf("session: save: %w", err)
	}
	return stateFrom(sess), nil
}

func (p *CookieProvider) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session, s auth.Session) error {
	if strings.TrimSpace(s.User.ID) == "" {
		return errors.New("session: backend session without user id")
	}
	sess.Values[keyUserID] = s.User.ID
	sess.Values[keyEmail] = s.User.Email
	sess.Values[keyDisplayName] = s.User.DisplayName
	sess.Values[keyAccessToken] = s.AccessToken
	sess.Values[keyRefreshToken] = s.RefreshToken
	sess.Values[keyExpiresAt] = s.ExpiresAt.Unix()
	sess.Options.MaxAge = p.store.Options.MaxAge
	return sess.Save(r, w)
}

func (p *CookieProvider) clear(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		p.log.Warn("clearing session cookie failed", map[string]any{"err": err})
	}
}

func stateFrom(sess *sessions.Session) State {
	uid, _ := sess.Values[keyUserID].(string)
	email, _ := sess.Values[keyEmail].(string)
	name, _ := sess.Values[keyDisplayName].(string)
	at, _ := sess.Values[keyAccessToken].(string)
	return State{
		Status:      StatusAuthenticated,
		UserID:      uid,
		Email:       email,
		DisplayName: name,
		AccessToken: at,
	}
}
