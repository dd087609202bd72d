// Package graphql es el cliente de datos contra el endpoint GraphQL de Nhost (Hasura).
//
// Read se saltea (sin request) si falta una variable requerida; los errores del
// servidor se devuelven con el mensaje tal cual para mostrarlo en la página.
// No hay reintentos.
package graphql

import (
	"context"
	"encoding/json"
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

// ErrSkipped: no se hizo el request porque faltaba una variable requerida (p.ej. userId).
var ErrSkipped = errors.New("graphql: skipped, required variable missing")

// Operation es un documento GraphQL con nombre y las variables sin las cuales no se envía.
type Operation struct {
	Name     string
	Document string
	Required []string
}

// Error agrupa los errors[] de la respuesta (o el fallo HTTP) de una operación.
type Error struct {
	Operation string
	Messages  []string
	Code      string
	Err       error
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("graphql %s failed", e.Operation)
	}
	return strings.Join(e.Messages, "; ")
}

func (e *Error) Unwrap() error { return e.Err }

type Options struct {
	Endpoint string
	Timeout  time.Duration

	// HTTP permite inyectar un httpclient ya armado (tests).
	HTTP *httpclient.Client

	// CacheSize acota el cache normalizado (entidades). 0 => DefaultCacheSize.
	CacheSize int

	Metrics *metrics.Metrics
	Logger  logger.Logger
}

type Client struct {
	http     *httpclient.Client
	endpoint string
	cache    *Cache
	metrics  *metrics.Metrics
	log      logger.Logger
}

func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("graphql: endpoint required")
	}

	hc := opts.HTTP
	if hc == nil {
		hc = httpclient.New(opts.Timeout)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		http:     hc,
		endpoint: endpoint,
		cache:    NewCache(opts.CacheSize),
		metrics:  opts.Metrics,
		log:      log.With(map[string]any{"component": "graphql"}),
	}, nil
}

// Cache expone el cache normalizado (solo lectura para los llamadores, salvo Evict).
func (c *Client) Cache() *Cache { return c.cache }

// Read ejecuta una query.
func (c *Client) Read(ctx context.Context, op Operation, vars map[string]any, out any) error {
	return c.do(ctx, op, vars, out)
}

// Write ejecuta una mutation una sola vez. Quien llama decide qué volver a leer después.
func (c *Client) Write(ctx context.Context, op Operation, vars map[string]any, out any) error {
	return c.do(ctx, op, vars, out)
}

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, op Operation, vars map[string]any, out any) error {
	if name := missingRequired(op.Required, vars); name != "" {
		c.metrics.ObserveUpstream(op.Name, metrics.OutcomeSkipped, 0)
		c.log.Debug("graphql operation skipped", map[string]any{"operation": op.Name, "missing": name})
		return ErrSkipped
	}

	start := time.Now()

	var resp response
	err := c.http.DoJSON(ctx, http.MethodPost, c.endpoint, httpclient.Bearer(auth.AccessToken(ctx)), request{
		Query:         op.Document,
		Variables:     vars,
		OperationName: op.Name,
	}, &resp)
	if err != nil {
		c.metrics.ObserveUpstream(op.Name, metrics.OutcomeError, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Warn("graphql request failed", map[string]any{"operation": op.Name, "err": err})
		return &Error{Operation: op.Name, Messages: []string{err.Error()}, Err: err}
	}

	if len(resp.Errors) > 0 {
		c.metrics.ObserveUpstream(op.Name, metrics.OutcomeError, time.Since(start))
		gqlErr := &Error{Operation: op.Name, Code: resp.Errors[0].Extensions.Code}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		c.log.Info("graphql operation returned errors", map[string]any{"operation": op.Name, "err": gqlErr})
		return gqlErr
	}

	c.metrics.ObserveUpstream(op.Name, metrics.OutcomeOK, time.Since(start))

	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		c.cache.Normalize(resp.Data)
	}

	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("graphql %s: decode data: %w", op.Name, err)
	}
	return nil
}

func missingRequired(required []string, vars map[string]any) string {
	for _, name := range required {
		v, ok := vars[name]
		if !ok || v == nil {
			return name
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return name
		}
	}
	return ""
}
