// Package web renderiza las páginas HTML (html/template) sobre los mismos servicios
// que usa la API JSON.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/domain/dashboard"
	"muroro-livestock/internal/middleware"
	"muroro-livestock/internal/platform/logger"
	"muroro-livestock/internal/session"
	"muroro-livestock/internal/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type navItem struct {
	Name string
	Href string
}

var navigation = []navItem{
	{Name: "Dashboard", Href: "/"},
	{Name: "Animals", Href: "/animals"},
	{Name: "Eggs", Href: "/eggs"},
	{Name: "Feeds", Href: "/feeds"},
	{Name: "Feeding", Href: "/feeding"},
}

var pages = []string{"auth", "dashboard", "animals", "stub", "loading", "error"}

// page es lo que recibe layout.html.
type page struct {
	Title   string
	Active  string
	Session session.State
	Nav     []navItem
	// Refresh en segundos (solo la página de loading).
	Refresh int
	Body    any
}

type Options struct {
	Sessions  session.Provider
	Animals   *animals.Service
	Dashboard *dashboard.Service
	Logger    logger.Logger
}

type Handler struct {
	sessions  session.Provider
	animalSvc *animals.Service
	animals   *workflow.Workflow[animals.Animal]
	dashboard *dashboard.Service
	log       logger.Logger

	tmpl map[string]*template.Template
}

func New(opts Options) (*Handler, error) {
	if opts.Sessions == nil || opts.Animals == nil || opts.Dashboard == nil {
		return nil, errors.New("web: sessions, animals and dashboard are required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handler{
		sessions:  opts.Sessions,
		animalSvc: opts.Animals,
		animals:   workflow.New[animals.Animal](animalSchema, animalStore{svc: opts.Animals}, log),
		dashboard: opts.Dashboard,
		log:       log.With(map[string]any{"component": "web"}),
		tmpl:      tmpl,
	}, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

var funcs = template.FuncMap{
	"date": animals.FormatDate,
}

// Register monta las páginas. Los guards se aplican por grupo.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pub chi.Router) {
		pub.Use(middleware.PublicOnly(h.Loading()))
		pub.Get("/auth", h.authPage)
		pub.Post("/auth", h.authSubmit)
	})

	r.Post("/signout", h.signOut)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireSession(h.Loading()))
		pr.Get("/", h.dashboardPage)
		pr.Get("/animals", h.animalsPage)
		pr.Post("/animals", h.animalsSubmit)
		pr.Get("/animals/{animalID}/delete", h.animalDeleteConfirm)
		pr.Post("/animals/{animalID}/delete", h.animalDelete)
		pr.Get("/eggs", h.stubPage(eggsStub))
		pr.Get("/feeds", h.stubPage(feedsStub))
		pr.Get("/feeding", h.stubPage(feedingStub))
	})
}

// Static sirve /static/* desde el binario.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Loading se muestra mientras la sesión no se pudo resolver; se recarga sola.
func (h *Handler) Loading() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		h.render(w, r, http.StatusOK, "loading", page{Title: "Loading", Refresh: 2})
	})
}

// ErrorPage es el fallback de middleware.Recover.
func (h *Handler) ErrorPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusInternalServerError, "error", page{Title: "Error"})
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := h.tmpl[name]
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	p.Session = session.FromContext(r.Context())
	p.Nav = navigation

	// Se renderiza a buffer para no mandar media página si el template falla.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.log.Error("template render failed", map[string]any{"template": name, "err": err})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// abandoned: el request se canceló mientras esperábamos al backend; no se renderiza nada.
func (h *Handler) abandoned(r *http.Request, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || r.Context().Err() != nil {
		h.log.Debug("discarding result of cancelled request", map[string]any{"path": r.URL.Path, "err": err})
		return true
	}
	return false
}
