// Package config carga la configuración del servidor: defaults, archivo YAML opcional
// y overrides por variables de entorno (en ese orden).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend elige de dónde salen los datos y la autenticación.
type Backend string

const (
	// BackendNhost usa Nhost Auth + GraphQL (Hasura). Es el modo normal.
	BackendNhost Backend = "nhost"
	// BackendPostgres lee/escribe directo en el Postgres de Nhost; auth sigue en Nhost.
	BackendPostgres Backend = "postgres"
	// BackendMemory es modo dev: datos y usuarios en memoria.
	BackendMemory Backend = "memory"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Nhost   NhostConfig   `yaml:"nhost"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`

	Backend Backend `yaml:"backend"`
	// DSN de Postgres, solo para BackendPostgres.
	DatabaseDSN string `yaml:"database_dsn"`

	// DevDebugHeader habilita X-Debug-User-ID (sin verifier). Solo con BackendMemory.
	DevDebugHeader bool `yaml:"dev_debug_header"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type NhostConfig struct {
	Subdomain string `yaml:"subdomain"`
	Region    string `yaml:"region"`

	// Overrides explícitos (self-hosted / CLI local). Si están vacíos se derivan de subdomain+region.
	AuthURL    string `yaml:"auth_url"`
	GraphQLURL string `yaml:"graphql_url"`

	// Secreto de los JWT de Hasura: la clave cruda o el JSON {"type":"HS256","key":"..."}.
	// Opcional; ver adapters/auth/nhost.Verifier.
	JWTSecret string `yaml:"jwt_secret"`

	Timeout time.Duration `yaml:"timeout"`

	// Tope de entidades del cache GraphQL compartido por todo el proceso.
	CacheSize int `yaml:"cache_size"`
}

type SessionConfig struct {
	Secret       string `yaml:"secret"`
	CookieName   string `yaml:"cookie_name"`
	SecureCookie bool   `yaml:"secure_cookie"`
	// MaxAge en segundos. 0 => cookie de sesión del navegador.
	MaxAge int `yaml:"max_age"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Nhost: NhostConfig{
			Timeout:   10 * time.Second,
			CacheSize: 1024,
		},
		Session: SessionConfig{
			CookieName: "muroro_session",
			MaxAge:     30 * 24 * 60 * 60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "muroro-livestock",
		},
		Backend: BackendNhost,
	}
}

// LoadFromFile aplica el YAML sobre los defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Load: defaults -> archivo (si path != "") -> env.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fromFile
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv pisa valores con variables de entorno presentes.
// lookup se inyecta para poder testear sin tocar el entorno real.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.HTTP.Addr = ":" + strings.TrimSpace(v)
	}
	str("HTTP_ADDR", &c.HTTP.Addr)

	str("NHOST_SUBDOMAIN", &c.Nhost.Subdomain)
	str("NHOST_REGION", &c.Nhost.Region)
	str("NHOST_AUTH_URL", &c.Nhost.AuthURL)
	str("NHOST_GRAPHQL_URL", &c.Nhost.GraphQLURL)
	str("NHOST_JWT_SECRET", &c.Nhost.JWTSecret)
	if v, ok := lookup("NHOST_CACHE_SIZE"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.Nhost.CacheSize = n
		}
	}

	str("SESSION_SECRET", &c.Session.Secret)
	if v, ok := lookup("SESSION_SECURE_COOKIE"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Session.SecureCookie = b
		}
	}

	var backend string
	str("BACKEND", &backend)
	if backend != "" {
		c.Backend = Backend(strings.ToLower(backend))
	}
	str("DB_DSN", &c.DatabaseDSN)
	if v, ok := lookup("DEV_DEBUG_HEADER"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.DevDebugHeader = b
		}
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("APP_NAME", &c.Log.App)
}

// AuthBaseURL devuelve la URL base de Nhost Auth (con /v1).
func (n NhostConfig) AuthBaseURL() string {
	if u := strings.TrimSpace(n.AuthURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return n.serviceURL("auth")
}

// GraphQLBaseURL devuelve el endpoint GraphQL (con /v1).
func (n NhostConfig) GraphQLBaseURL() string {
	if u := strings.TrimSpace(n.GraphQLURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return n.serviceURL("graphql")
}

func (n NhostConfig) serviceURL(service string) string {
	sub := strings.TrimSpace(n.Subdomain)
	region := strings.TrimSpace(n.Region)
	if sub == "" {
		return ""
	}
	// CLI local de Nhost: subdomain=local, sin región.
	if sub == "local" && region == "" {
		return fmt.Sprintf("https://local.%s.local.nhost.run/v1", service)
	}
	return fmt.Sprintf("https://%s.%s.%s.nhost.run/v1", sub, service, region)
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}

	switch c.Backend {
	case BackendMemory:
		// nada externo que validar
	case BackendNhost, BackendPostgres:
		if c.Nhost.AuthBaseURL() == "" {
			errs = append(errs, errors.New("nhost.subdomain (or nhost.auth_url) is required"))
		}
		if c.Backend == BackendNhost && c.Nhost.GraphQLBaseURL() == "" {
			errs = append(errs, errors.New("nhost.subdomain (or nhost.graphql_url) is required"))
		}
		if c.Nhost.Subdomain != "" && c.Nhost.Subdomain != "local" && c.Nhost.Region == "" &&
			(c.Nhost.AuthURL == "" || c.Nhost.GraphQLURL == "") {
			errs = append(errs, errors.New("nhost.region is required with nhost.subdomain"))
		}
		if c.Backend == BackendPostgres && strings.TrimSpace(c.DatabaseDSN) == "" {
			errs = append(errs, errors.New("database_dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.DevDebugHeader && c.Backend != BackendMemory {
		errs = append(errs, errors.New("dev_debug_header is only allowed with the memory backend"))
	}

	// securecookie exige una clave de hash; 32 bytes es lo recomendado.
	if c.Backend != BackendMemory && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 characters"))
	}

	return errors.Join(errs...)
}
