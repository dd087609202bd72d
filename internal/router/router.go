package router

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "muroro-livestock/docs"
	memauth "muroro-livestock/internal/adapters/auth/memory"
	"muroro-livestock/internal/adapters/auth/nhost"
	"muroro-livestock/internal/adapters/storage/hasura"
	mem "muroro-livestock/internal/adapters/storage/memory"
	pg "muroro-livestock/internal/adapters/storage/postgres"
	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/domain/dashboard"
	"muroro-livestock/internal/middleware"
	"muroro-livestock/internal/platform/config"
	"muroro-livestock/internal/platform/graphql"
	"muroro-livestock/internal/platform/logger"
	"muroro-livestock/internal/platform/metrics"
	"muroro-livestock/internal/ports/auth"
	"muroro-livestock/internal/session"
	"muroro-livestock/internal/web"
)

type Options struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Opcional: si viene, reemplaza el provider de cookies (tests).
	Sessions session.Provider
	// Opcional: DB ya abierta para BackendPostgres.
	DB *sql.DB
}

// backend es lo que cambia según config.Backend.
type backend struct {
	authenticator auth.Authenticator
	verifier      auth.AuthVerifier
	animals       animals.Repository
	dashboard     dashboard.Repository
	sessionSecret string
	close         func() error
}

// NewRouter arma middleware, API, páginas y el backend elegido.
// El func devuelto libera lo que abrió el backend (pool de Postgres).
func NewRouter(opts Options) (http.Handler, func() error, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	be, err := newBackend(cfg, opts.DB, log, m)
	if err != nil {
		return nil, nil, err
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions, err = session.NewCookieProvider(session.Options{
			Secret:        be.sessionSecret,
			CookieName:    cfg.Session.CookieName,
			Secure:        cfg.Session.SecureCookie,
			MaxAge:        cfg.Session.MaxAge,
			Authenticator: be.authenticator,
			Logger:        log,
		})
		if err != nil {
			_ = be.close()
			return nil, nil, err
		}
	}

	// Services por módulo
	animalsSvc := animals.NewService(be.animals)
	dashboardSvc := dashboard.NewService(be.dashboard)

	pages, err := web.New(web.Options{
		Sessions:  sessions,
		Animals:   animalsSvc,
		Dashboard: dashboardSvc,
		Logger:    log,
	})
	if err != nil {
		_ = be.close()
		return nil, nil, err
	}

	verifier := be.verifier
	if cfg.DevDebugHeader {
		log.Warn("dev mode: X-Debug-User-ID accepted, bearer tokens ignored", nil)
		verifier = nil
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(m.Middleware)

	r.Use(middleware.SessionContext(sessions, verifier))
	// Después de la sesión: la página de error conserva el shell.
	r.Use(middleware.Recover(log, pages.ErrorPage()))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Handle("/static/*", web.Static())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API JSON
	session.RegisterRoutes(r)
	animals.RegisterRoutes(r, animalsSvc)
	dashboard.RegisterRoutes(r, dashboardSvc)

	// Páginas
	pages.Register(r)

	log.Info("router ready", map[string]any{"backend": string(cfg.Backend)})
	return r, be.close, nil
}

func newBackend(cfg *config.Config, db *sql.DB, log logger.Logger, m *metrics.Metrics) (*backend, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		secret := cfg.Session.Secret
		if len(secret) < 32 {
			// Sin secreto configurado las sesiones no sobreviven un reinicio; en dev alcanza.
			secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
			log.Warn("memory backend: using a random session secret", nil)
		}
		authn, err := memauth.New(memauth.Options{Secret: secret})
		if err != nil {
			return nil, err
		}
		verifier, err := nhost.NewVerifier(secret, nil)
		if err != nil {
			return nil, err
		}
		animalRepo := mem.NewAnimalRepo()
		return &backend{
			authenticator: authn,
			verifier:      verifier,
			animals:       animalRepo,
			dashboard:     mem.NewDashboardRepo(animalRepo),
			sessionSecret: secret,
			close:         noop,
		}, nil

	case config.BackendNhost, config.BackendPostgres:
		client, err := nhost.NewClient(nhost.Config{
			BaseURL: cfg.Nhost.AuthBaseURL(),
			Timeout: cfg.Nhost.Timeout,
			Metrics: m,
			Logger:  log,
		})
		if err != nil {
			return nil, err
		}
		verifier, err := nhost.NewVerifier(cfg.Nhost.JWTSecret, client)
		if err != nil {
			return nil, err
		}
		be := &backend{
			authenticator: client,
			verifier:      verifier,
			sessionSecret: cfg.Session.Secret,
			close:         noop,
		}

		if cfg.Backend == config.BackendPostgres {
			if db == nil {
				if db, err = pg.Open(cfg.DatabaseDSN); err != nil {
					return nil, fmt.Errorf("open postgres: %w", err)
				}
				be.close = db.Close
			}
			be.animals = pg.NewAnimalsRepo(db)
			be.dashboard = pg.NewDashboardRepo(db)
			return be, nil
		}

		gql, err := graphql.New(graphql.Options{
			Endpoint:  cfg.Nhost.GraphQLBaseURL(),
			Timeout:   cfg.Nhost.Timeout,
			CacheSize: cfg.Nhost.CacheSize,
			Metrics:   m,
			Logger:    log,
		})
		if err != nil {
			return nil, err
		}
		be.animals = hasura.NewAnimalsRepo(gql)
		be.dashboard = hasura.NewDashboardRepo(gql)
		return be, nil
	}

	return nil, errors.New("router: unknown backend " + string(cfg.Backend))
}
