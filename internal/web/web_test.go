package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"muroro-livestock/internal/adapters/storage/memory"
	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/domain/dashboard"
	"muroro-livestock/internal/ports/auth"
	"muroro-livestock/internal/session"
)

const owner = "user-1"

type fakeSessions struct {
	state     session.State
	signInErr error
	signUp    session.SignUpResult
	signUpErr error
	signedOut bool
}

func (f *fakeSessions) Bootstrap(w http.ResponseWriter, r *http.Request) session.State { return f.state }

func (f *fakeSessions) SignIn(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (session.State, error) {
	if f.signInErr != nil {
		return session.Unauthenticated(), f.signInErr
	}
	return f.state, nil
}

func (f *fakeSessions) SignUp(ctx context.Context, w http.ResponseWriter, r *http.Request, in session.SignUpInput) (session.SignUpResult, error) {
	return f.signUp, f.signUpErr
}

func (f *fakeSessions) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) session.State {
	f.signedOut = true
	return session.Unauthenticated()
}

// flakyRepo falla las escrituras cuando se le pide. rejectIDs imita a Postgres/Hasura,
// que responden con error (no con "no existe") ante un id que no es uuid.
type flakyRepo struct {
	*memory.AnimalRepo
	failWrites bool
	rejectIDs  bool
}

func (r *flakyRepo) GetByID(ctx context.Context, owner, id string) (animals.Animal, error) {
	if r.rejectIDs {
		return animals.Animal{}, errors.New(`invalid input syntax for type uuid: "` + id + `"`)
	}
	return r.AnimalRepo.GetByID(ctx, owner, id)
}

func (r *flakyRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	if r.failWrites {
		return animals.Animal{}, errors.New("hasura: connection reset")
	}
	return r.AnimalRepo.Create(ctx, a)
}

func (r *flakyRepo) Delete(ctx context.Context, owner, id string) error {
	if r.failWrites {
		return errors.New("hasura: connection reset")
	}
	return r.AnimalRepo.Delete(ctx, owner, id)
}

type fixture struct {
	router   http.Handler
	sessions *fakeSessions
	repo     *flakyRepo
	stats    *memory.DashboardRepo
}

func newFixture(t *testing.T, st session.State) *fixture {
	t.Helper()
	base := memory.NewAnimalRepo()
	repo := &flakyRepo{AnimalRepo: base}
	stats := memory.NewDashboardRepo(base)
	sessions := &fakeSessions{state: st}

	h, err := New(Options{
		Sessions:  sessions,
		Animals:   animals.NewService(repo),
		Dashboard: dashboard.NewService(stats),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithState(req.Context(), sessions.state)))
		})
	})
	h.Register(r)
	r.Handle("/static/*", Static())

	return &fixture{router: r, sessions: sessions, repo: repo, stats: stats}
}

func signedIn() session.State {
	return session.State{Status: session.StatusAuthenticated, UserID: owner, Email: "ana@farm.test", DisplayName: "Ana Moyo"}
}

func (f *fixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// find devuelve los elementos tag cuyo atributo key vale val (key vacío: todos).
func find(doc *html.Node, tag, key, val string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			if key == "" {
				out = append(out, n)
			} else if v, ok := attr(n, key); ok && v == val {
				out = append(out, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func TestGuards(t *testing.T) {
	f := newFixture(t, session.Unauthenticated())
	w := f.do(t, http.MethodGet, "/animals", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))

	f.sessions.state = signedIn()
	w = f.do(t, http.MethodGet, "/auth", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	f.sessions.state = session.Loading()
	w = f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	doc := parse(t, w)
	assert.Contains(t, text(doc), "Loading Muroro Livestock Management...")
	assert.NotEmpty(t, find(doc, "meta", "http-equiv", "refresh"))
	assert.Empty(t, find(doc, "aside", "class", "sidebar"))
}

func TestAuthPage_TogglesModes(t *testing.T) {
	f := newFixture(t, session.Unauthenticated())

	doc := parse(t, f.do(t, http.MethodGet, "/auth", nil))
	assert.Contains(t, text(doc), "Sign in to your account")
	assert.Empty(t, find(doc, "input", "name", "first_name"))

	doc = parse(t, f.do(t, http.MethodGet, "/auth?mode=signup", nil))
	assert.Contains(t, text(doc), "Create your account")
	assert.Len(t, find(doc, "input", "name", "first_name"), 1)
	assert.Contains(t, text(doc), "Already have an account? Sign in")
}

func TestAuthSubmit_ShowsBackendError(t *testing.T) {
	f := newFixture(t, session.Unauthenticated())
	f.sessions.signInErr = &auth.Error{Message: "Incorrect email or password", Err: auth.ErrUnauthorized}

	w := f.do(t, http.MethodPost, "/auth", url.Values{"mode": {"signin"}, "email": {"ana@farm.test"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	alerts := find(parse(t, w), "div", "role", "alert")
	require.Len(t, alerts, 1)
	assert.Equal(t, "Incorrect email or password", text(alerts[0]))
}

func TestAuthSubmit_SignInRedirectsHome(t *testing.T) {
	f := newFixture(t, session.Unauthenticated())
	w := f.do(t, http.MethodPost, "/auth", url.Values{"email": {"ana@farm.test"}, "password": {"secret-pass"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAuthSubmit_SignUpNeedsVerification(t *testing.T) {
	f := newFixture(t, session.Unauthenticated())
	f.sessions.signUp = session.SignUpResult{NeedsEmailVerification: true, State: session.Unauthenticated()}

	w := f.do(t, http.MethodPost, "/auth", url.Values{
		"mode": {"signup"}, "email": {"ana@farm.test"}, "password": {"secret-pass"},
		"first_name": {"Ana"}, "last_name": {"Moyo"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	status := find(parse(t, w), "div", "role", "status")
	require.Len(t, status, 1)
	assert.Equal(t, "Please check your email for verification link", text(status[0]))
}

func TestSignOut(t *testing.T) {
	f := newFixture(t, signedIn())
	w := f.do(t, http.MethodPost, "/signout", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))
	assert.True(t, f.sessions.signedOut)
}

func TestDashboard_CardsAndHealthAlerts(t *testing.T) {
	f := newFixture(t, signedIn())
	ctx := context.Background()
	svc := animals.NewService(f.repo)
	_, err := svc.Create(ctx, owner, animals.CreateInput{Type: "Cow", Breed: "Angus", HealthStatus: "sick"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, animals.CreateInput{Type: "Goat", Breed: "Boer", Name: "Billy"})
	require.NoError(t, err)
	f.stats.AddEggs(owner, 12)
	f.stats.AddFeed(owner, 40.5)

	w := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)

	cards := find(doc, "dl", "class", "stat-card royal-blue")
	require.Len(t, cards, 1)
	assert.Equal(t, "Total Animals 2", text(cards[0]))
	assert.Equal(t, "Eggs Collected 12", text(find(doc, "dl", "class", "stat-card success")[0]))
	assert.Equal(t, "Feed Stock 40.5 kg", text(find(doc, "dl", "class", "stat-card warning")[0]))

	rows := find(doc, "tr", "", "")
	require.Len(t, rows, 2)
	assert.Equal(t, "Unnamed Cow Sick", text(rows[1]))

	active := find(doc, "a", "aria-current", "page")
	require.Len(t, active, 1)
	assert.Equal(t, "Dashboard", text(active[0]))
}

func TestDashboard_NoDataDefaults(t *testing.T) {
	f := newFixture(t, signedIn())
	doc := parse(t, f.do(t, http.MethodGet, "/", nil))
	assert.Equal(t, "Feed Stock 0 kg", text(find(doc, "dl", "class", "stat-card warning")[0]))
	assert.Contains(t, text(doc), "All animals are healthy! 🎉")
}

func TestAnimals_EmptyState(t *testing.T) {
	f := newFixture(t, signedIn())
	doc := parse(t, f.do(t, http.MethodGet, "/animals", nil))
	assert.Contains(t, text(doc), "No animals added yet")
	assert.Empty(t, find(doc, "form", "action", "/animals"), "form is closed until requested")

	doc = parse(t, f.do(t, http.MethodGet, "/animals?new=1", nil))
	require.Len(t, find(doc, "form", "action", "/animals"), 1)
	health := find(doc, "select", "name", "health_status")
	require.Len(t, health, 1)
	selected := find(health[0], "option", "selected", "")
	require.Len(t, selected, 1)
	assert.Equal(t, "healthy", text(selected[0]))
}

func TestAnimals_CreateAndDelete(t *testing.T) {
	f := newFixture(t, signedIn())
	ctx := context.Background()

	w := f.do(t, http.MethodPost, "/animals", url.Values{"type": {"Cow"}, "breed": {"Holstein"}, "birth_date": {"2024-02-10"}})
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	cards := find(doc, "article", "class", "animal-card")
	require.Len(t, cards, 1)
	assert.Contains(t, text(cards[0]), "Unnamed")
	assert.Contains(t, text(cards[0]), "Birth Date 2024-02-10")
	assert.Empty(t, find(doc, "form", "action", "/animals"), "form closes after a successful add")

	svc := animals.NewService(f.repo)
	goat, err := svc.Create(ctx, owner, animals.CreateInput{Type: "Goat", Breed: "Boer", Name: "Billy"})
	require.NoError(t, err)
	pig, err := svc.Create(ctx, owner, animals.CreateInput{Type: "Pig", Breed: "Duroc", Name: "Porky"})
	require.NoError(t, err)
	// de otro usuario, no debe verse ni tocarse
	stranger, err := svc.Create(ctx, "user-2", animals.CreateInput{Type: "Sheep", Breed: "Merino"})
	require.NoError(t, err)

	ids := func(o string) []string {
		list, err := f.repo.ListByOwner(ctx, o)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}
	before := ids(owner)
	require.Len(t, before, 3)
	cow := before[2]

	w = f.do(t, http.MethodGet, "/animals/"+goat.ID+"/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dialogs := find(parse(t, w), "div", "role", "alertdialog")
	require.Len(t, dialogs, 1)
	assert.Contains(t, text(dialogs[0]), "Are you sure you want to delete this animal?")
	assert.Equal(t, before, ids(owner), "asking for confirmation must not delete")

	w = f.do(t, http.MethodPost, "/animals/"+goat.ID+"/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{pig.ID, cow}, ids(owner), "only the confirmed animal is removed")
	assert.Equal(t, []string{stranger.ID}, ids("user-2"))

	doc = parse(t, w)
	assert.Len(t, find(doc, "article", "class", "animal-card"), 2)
	assert.Len(t, find(doc, "a", "href", "/animals/"+pig.ID+"/delete"), 1)
	assert.Len(t, find(doc, "a", "href", "/animals/"+cow+"/delete"), 1)
	assert.Empty(t, find(doc, "a", "href", "/animals/"+goat.ID+"/delete"))

	w = f.do(t, http.MethodPost, "/animals/"+pig.ID+"/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, "/animals/"+cow+"/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, text(parse(t, w)), "No animals added yet")
}

func TestAnimals_MissingRequiredKeepsDraft(t *testing.T) {
	f := newFixture(t, signedIn())

	w := f.do(t, http.MethodPost, "/animals", url.Values{"type": {"Goat"}, "name": {"Billy"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	doc := parse(t, w)
	assert.Contains(t, text(doc), "Please fill in: Breed")
	name := find(doc, "input", "name", "name")
	require.Len(t, name, 1)
	v, _ := attr(name[0], "value")
	assert.Equal(t, "Billy", v)

	list, _ := f.repo.ListByOwner(context.Background(), owner)
	assert.Empty(t, list)
}

func TestAnimals_WriteFailureShowsAlert(t *testing.T) {
	f := newFixture(t, signedIn())
	f.repo.failWrites = true

	w := f.do(t, http.MethodPost, "/animals", url.Values{"type": {"Pig"}, "breed": {"Duroc"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	doc := parse(t, w)
	dialogs := find(doc, "div", "role", "alertdialog")
	require.Len(t, dialogs, 1)
	assert.Contains(t, text(dialogs[0]), "Error adding animal. Please try again.")

	breed := find(doc, "input", "name", "breed")
	require.Len(t, breed, 1)
	v, _ := attr(breed[0], "value")
	assert.Equal(t, "Duroc", v, "draft survives a failed submit")
}

func TestAnimals_CancelRedirects(t *testing.T) {
	f := newFixture(t, signedIn())
	w := f.do(t, http.MethodPost, "/animals", url.Values{"action": {"cancel"}, "breed": {"x"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/animals", w.Header().Get("Location"))
}

func TestAnimals_DeleteUnknownRedirects(t *testing.T) {
	f := newFixture(t, signedIn())
	w := f.do(t, http.MethodGet, "/animals/does-not-exist/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/animals", w.Header().Get("Location"))

	// un backend SQL rechaza el id con error; igual debe volver a la lista
	f.repo.rejectIDs = true
	w = f.do(t, http.MethodGet, "/animals/not-a-uuid/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/animals", w.Header().Get("Location"))
}

func TestStubPages(t *testing.T) {
	f := newFixture(t, signedIn())
	for path, heading := range map[string]string{"/eggs": "Egg Tracking", "/feeds": "Feed Management", "/feeding": "Feeding Records"} {
		w := f.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		h1 := find(parse(t, w), "h1", "", "")
		require.NotEmpty(t, h1)
		assert.Equal(t, heading, text(h1[0]))
	}
}

func TestStatic(t *testing.T) {
	f := newFixture(t, session.Unauthenticated())
	w := f.do(t, http.MethodGet, "/static/style.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".sidebar")
}
