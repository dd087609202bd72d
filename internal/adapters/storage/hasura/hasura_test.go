package hasura

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/domain/dashboard"
	"muroro-livestock/internal/platform/graphql"
)

type gqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// fakeHasura responde por operationName y registra el orden de las operaciones.
type fakeHasura struct {
	mu   sync.Mutex
	ops  []string
	vars []map[string]any
	data map[string]string
}

func (f *fakeHasura) set(op, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[op] = body
}

func (f *fakeHasura) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeHasura) variables(i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vars[i]
}

func (f *fakeHasura) client(t *testing.T) *graphql.Client {
	t.Helper()
	return f.clientWithCache(t, 0)
}

func (f *fakeHasura) clientWithCache(t *testing.T, cacheSize int) *graphql.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.ops = append(f.ops, req.OperationName)
		f.vars = append(f.vars, req.Variables)
		body, ok := f.data[req.OperationName]
		f.mu.Unlock()
		if !ok {
			t.Errorf("unexpected operation %s", req.OperationName)
			body = `{"data":null}`
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	c, err := graphql.New(graphql.Options{Endpoint: ts.URL, CacheSize: cacheSize})
	require.NoError(t, err)
	return c
}

const listBody = `{"data":{"animals":[
	{"__typename":"animals","id":"a-2","user_id":"u1","type":"Goat","breed":"Boer","name":null,
	 "birth_date":"2024-02-10","acquisition_date":null,"status":"active","health_status":"sick","notes":null,
	 "created_at":"2025-03-02T08:00:00.123456+00:00"},
	{"__typename":"animals","id":"a-1","user_id":"u1","type":"Cow","breed":"Angus","name":"Bessie",
	 "birth_date":null,"acquisition_date":null,"status":"sold","health_status":"healthy","notes":"calm",
	 "created_at":"2025-03-01T08:00:00+00:00"}]}}`

func TestAnimalsRepo_ListThenGetFromCache(t *testing.T) {
	f := &fakeHasura{data: map[string]string{"GetAnimals": listBody}}
	repo := NewAnimalsRepo(f.client(t))
	ctx := context.Background()

	list, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-2", list[0].ID)
	assert.Equal(t, "", list[0].Name)
	assert.Equal(t, "2024-02-10", animals.FormatDate(list[0].BirthDate))
	assert.Equal(t, animals.HealthSick, list[0].HealthStatus)
	assert.Equal(t, "Bessie", list[1].DisplayName())

	a, err := repo.GetByID(ctx, "u1", "a-1")
	require.NoError(t, err)
	assert.Equal(t, "calm", a.Notes)
	assert.Equal(t, []string{"GetAnimals"}, f.operations(), "GetByID must be served by the cache")

	_, err = repo.GetByID(ctx, "intruder", "a-1")
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func TestAnimalsRepo_ListDropsAnimalsDeletedElsewhere(t *testing.T) {
	f := &fakeHasura{data: map[string]string{
		"GetAnimals": listBody,
		"GetAnimal":  `{"data":{"animals_by_pk":null}}`,
	}}
	gql := f.client(t)
	repo := NewAnimalsRepo(gql)
	ctx := context.Background()

	_, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	// otro usuario con un animal cacheado que no debe tocarse
	gql.Cache().Normalize(json.RawMessage(`{"animals":[{"__typename":"animals","id":"b-1","user_id":"u2","type":"Pig"}]}`))

	// a-1 se borró desde otra instancia; la próxima lista ya no lo trae
	f.set("GetAnimals", `{"data":{"animals":[
		{"__typename":"animals","id":"a-2","user_id":"u1","type":"Goat","breed":"Boer","status":"active",
		 "health_status":"sick","created_at":"2025-03-02T08:00:00Z"}]}}`)
	list, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	var cached map[string]any
	assert.False(t, gql.Cache().Get("animals", "a-1", &cached))
	assert.True(t, gql.Cache().Get("animals", "a-2", &cached))
	assert.True(t, gql.Cache().Get("animals", "b-1", &cached))

	_, err = repo.GetByID(ctx, "u1", "a-1")
	assert.ErrorIs(t, err, animals.ErrNotFound)
	assert.Equal(t, []string{"GetAnimals", "GetAnimals", "GetAnimal"}, f.operations())
}

func TestAnimalsRepo_CacheIsBoundedAcrossOwners(t *testing.T) {
	f := &fakeHasura{data: map[string]string{}}
	gql := f.clientWithCache(t, 8)
	repo := NewAnimalsRepo(gql)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		owner := fmt.Sprintf("u%d", i)
		f.set("GetAnimals", fmt.Sprintf(`{"data":{"animals":[
			{"__typename":"animals","id":"a-%d","user_id":%q,"type":"Cow","breed":"Angus",
			 "status":"active","health_status":"healthy","notes":"private note %d","created_at":"2025-03-01T08:00:00Z"}]}}`, i, owner, i))
		_, err := repo.ListByOwner(ctx, owner)
		require.NoError(t, err)
	}

	assert.Equal(t, 8, gql.Cache().Len())
	var cached map[string]any
	assert.False(t, gql.Cache().Get("animals", "a-0", &cached), "oldest entries must be evicted")
	assert.True(t, gql.Cache().Get("animals", "a-99", &cached))
}

func TestAnimalsRepo_GetByIDCacheMissQueries(t *testing.T) {
	f := &fakeHasura{data: map[string]string{"GetAnimal": `{"data":{"animals_by_pk":null}}`}}
	repo := NewAnimalsRepo(f.client(t))

	_, err := repo.GetByID(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, animals.ErrNotFound)
	assert.Equal(t, []string{"GetAnimal"}, f.operations())
}

func TestAnimalsRepo_CreateSendsNullsForEmptyFields(t *testing.T) {
	f := &fakeHasura{data: map[string]string{
		"InsertAnimal": `{"data":{"insert_animals_one":{"__typename":"animals","id":"a-9","user_id":"u1","type":"Pig",
			"breed":"Duroc","name":null,"birth_date":null,"acquisition_date":null,"status":"active",
			"health_status":"healthy","notes":null,"created_at":"2025-03-03T08:00:00Z"}}}`,
	}}
	repo := NewAnimalsRepo(f.client(t))

	a, err := repo.Create(context.Background(), animals.Animal{
		UserID: "u1", Type: animals.TypePig, Breed: "Duroc",
		Status: animals.StatusActive, HealthStatus: animals.HealthHealthy,
	})
	require.NoError(t, err)
	assert.Equal(t, "a-9", a.ID)

	object, ok := f.variables(0)["object"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, object["name"])
	assert.Nil(t, object["birth_date"])
	assert.Equal(t, "u1", object["user_id"])
	assert.Equal(t, "Pig", object["type"])
}

func TestAnimalsRepo_DeleteEvictsAndMapsNull(t *testing.T) {
	f := &fakeHasura{data: map[string]string{
		"GetAnimals":   listBody,
		"DeleteAnimal": `{"data":{"delete_animals_by_pk":{"__typename":"animals","id":"a-1"}}}`,
	}}
	gql := f.client(t)
	repo := NewAnimalsRepo(gql)
	ctx := context.Background()

	_, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "u1", "a-1"))

	var cached map[string]any
	assert.False(t, gql.Cache().Get("animals", "a-1", &cached))

	f.set("DeleteAnimal", `{"data":{"delete_animals_by_pk":null}}`)
	assert.ErrorIs(t, repo.Delete(ctx, "u1", "a-1"), animals.ErrNotFound)
}

func TestAnimalsRepo_ServerErrorVerbatim(t *testing.T) {
	f := &fakeHasura{data: map[string]string{
		"GetAnimals": `{"errors":[{"message":"field 'animals' not found in type: 'query_root'","extensions":{"code":"validation-failed"}}]}`,
	}}
	repo := NewAnimalsRepo(f.client(t))

	_, err := repo.ListByOwner(context.Background(), "u1")
	assert.EqualError(t, err, "field 'animals' not found in type: 'query_root'")
}

func TestDashboardRepo_NullAggregates(t *testing.T) {
	f := &fakeHasura{data: map[string]string{
		"GetDashboardStats": `{"data":{
			"animals_aggregate":{"aggregate":{"count":0}},
			"eggs_aggregate":{"aggregate":{"sum":{"quantity":null}}},
			"feeds_aggregate":{"aggregate":{"sum":{"quantity":null}}},
			"animals":[]}}`,
	}}
	repo := NewDashboardRepo(f.client(t))

	agg, err := repo.Aggregates(context.Background(), "u1")
	require.NoError(t, err)
	st := dashboard.FromAggregates(agg)
	assert.Equal(t, 0, st.TotalAnimals)
	assert.Equal(t, "0 kg", st.FeedStockLabel())
	assert.True(t, st.AllHealthy())
	assert.Len(t, f.operations(), 1, "one document for the four aggregates")
}

func TestDashboardRepo_Values(t *testing.T) {
	f := &fakeHasura{data: map[string]string{
		"GetDashboardStats": `{"data":{
			"animals_aggregate":{"aggregate":{"count":4}},
			"eggs_aggregate":{"aggregate":{"sum":{"quantity":30}}},
			"feeds_aggregate":{"aggregate":{"sum":{"quantity":120.5}}},
			"animals":[{"__typename":"animals","id":"a-2","name":null,"type":"Goat","health_status":"sick"}]}}`,
	}}
	repo := NewDashboardRepo(f.client(t))

	agg, err := repo.Aggregates(context.Background(), "u1")
	require.NoError(t, err)
	st := dashboard.FromAggregates(agg)
	assert.Equal(t, 4, st.TotalAnimals)
	assert.Equal(t, "30", st.EggsLabel())
	assert.Equal(t, "120.5 kg", st.FeedStockLabel())
	require.Len(t, st.SickAnimals, 1)
	assert.Equal(t, "Unnamed", st.SickAnimals[0].DisplayName())
}
