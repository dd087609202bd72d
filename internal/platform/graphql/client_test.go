package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muroro-livestock/internal/ports/auth"
)

var getAnimals = Operation{
	Name:     "GetAnimals",
	Document: `query GetAnimals($userId: uuid!) { animals(where: {user_id: {_eq: $userId}}) { __typename id name } }`,
	Required: []string{"userId"},
}

type gqlServer struct {
	calls    atomic.Int32
	lastAuth atomic.Value
	respond  func(w http.ResponseWriter, req request)
}

func (s *gqlServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.lastAuth.Store(r.Header.Get("Authorization"))
		var req request
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.respond(w, req)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRead_SkipsWithoutRequiredVariable(t *testing.T) {
	srv := &gqlServer{respond: func(w http.ResponseWriter, _ request) { t.Error("no request expected") }}
	ts := srv.start(t)

	c, err := New(Options{Endpoint: ts.URL})
	require.NoError(t, err)

	for _, vars := range []map[string]any{nil, {"userId": ""}, {"userId": nil}, {"userId": "   "}} {
		err := c.Read(context.Background(), getAnimals, vars, nil)
		assert.ErrorIs(t, err, ErrSkipped)
	}
	assert.Equal(t, int32(0), srv.calls.Load())
}

func TestRead_AttachesBearerAndDecodes(t *testing.T) {
	srv := &gqlServer{respond: func(w http.ResponseWriter, req request) {
		if req.OperationName != "GetAnimals" || req.Variables["userId"] != "u-1" {
			t.Errorf("unexpected request %#v", req)
		}
		_, _ = w.Write([]byte(`{"data":{"animals":[{"__typename":"animals","id":"a-1","name":"Bessie"}]}}`))
	}}
	ts := srv.start(t)

	c, err := New(Options{Endpoint: ts.URL})
	require.NoError(t, err)

	ctx := auth.WithAccessToken(context.Background(), "tok-123")
	var out struct {
		Animals []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"animals"`
	}
	require.NoError(t, c.Read(ctx, getAnimals, map[string]any{"userId": "u-1"}, &out))

	require.Len(t, out.Animals, 1)
	assert.Equal(t, "Bessie", out.Animals[0].Name)
	assert.Equal(t, "Bearer tok-123", srv.lastAuth.Load())

	var cached struct {
		Name string `json:"name"`
	}
	require.True(t, c.Cache().Get("animals", "a-1", &cached))
	assert.Equal(t, "Bessie", cached.Name)
}

func TestWrite_ReturnsServerMessageVerbatim(t *testing.T) {
	srv := &gqlServer{respond: func(w http.ResponseWriter, _ request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Check constraint violation. insert check constraint failed","extensions":{"code":"permission-error"}}]}`))
	}}
	ts := srv.start(t)

	c, err := New(Options{Endpoint: ts.URL})
	require.NoError(t, err)

	err = c.Write(context.Background(), Operation{Name: "InsertAnimal", Document: "mutation {}"}, nil, nil)
	require.Error(t, err)

	var gqlErr *Error
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, "permission-error", gqlErr.Code)
	assert.Equal(t, "Check constraint violation. insert check constraint failed", err.Error())
	assert.Equal(t, int32(1), srv.calls.Load(), "writes are never retried")
}

func TestRead_HTTPFailureIsAnError(t *testing.T) {
	srv := &gqlServer{respond: func(w http.ResponseWriter, _ request) {
		w.WriteHeader(http.StatusBadGateway)
	}}
	ts := srv.start(t)

	c, err := New(Options{Endpoint: ts.URL})
	require.NoError(t, err)

	err = c.Read(context.Background(), getAnimals, map[string]any{"userId": "u-1"}, nil)
	var gqlErr *Error
	require.True(t, errors.As(err, &gqlErr))
	assert.Contains(t, err.Error(), "status=502")
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
