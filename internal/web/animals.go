package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/session"
	"muroro-livestock/internal/workflow"
)

var animalSchema = workflow.Schema{
	Entity: "animal",
	Fields: []workflow.Field{
		{Name: "type", Label: "Type", Kind: workflow.KindSelect, Required: true, Prompt: "Select Type", Options: typeOptions()},
		{Name: "breed", Label: "Breed", Kind: workflow.KindText, Required: true},
		{Name: "name", Label: "Name", Kind: workflow.KindText, Placeholder: "Optional"},
		{Name: "birth_date", Label: "Birth Date", Kind: workflow.KindDate},
		{Name: "acquisition_date", Label: "Acquisition Date", Kind: workflow.KindDate},
		{Name: "health_status", Label: "Health Status", Kind: workflow.KindSelect, Default: string(animals.HealthHealthy), Options: healthOptions()},
		{Name: "status", Label: "Status", Kind: workflow.KindSelect, Default: string(animals.StatusActive), Options: statusOptions()},
		{Name: "notes", Label: "Notes", Kind: workflow.KindTextArea, Placeholder: "Any additional notes about the animal..."},
	},
}

func typeOptions() []workflow.Option {
	out := make([]workflow.Option, 0, len(animals.Types))
	for _, t := range animals.Types {
		out = append(out, workflow.Option{Value: string(t), Label: string(t)})
	}
	return out
}

func healthOptions() []workflow.Option {
	out := make([]workflow.Option, 0, len(animals.HealthStatuses))
	for _, h := range animals.HealthStatuses {
		out = append(out, workflow.Option{Value: string(h), Label: h.Label()})
	}
	return out
}

func statusOptions() []workflow.Option {
	out := make([]workflow.Option, 0, len(animals.Statuses))
	for _, s := range animals.Statuses {
		out = append(out, workflow.Option{Value: string(s), Label: string(s)})
	}
	return out
}

// animalStore adapta animals.Service al workflow genérico.
type animalStore struct {
	svc *animals.Service
}

func (s animalStore) List(ctx context.Context, owner string) ([]animals.Animal, error) {
	return s.svc.List(ctx, owner)
}

func (s animalStore) Create(ctx context.Context, owner string, d workflow.Draft) (animals.Animal, error) {
	return s.svc.Create(ctx, owner, animals.CreateInput{
		Type:            d.Get("type"),
		Breed:           d.Get("breed"),
		Name:            d.Get("name"),
		BirthDate:       d.Get("birth_date"),
		AcquisitionDate: d.Get("acquisition_date"),
		Status:          d.Get("status"),
		HealthStatus:    d.Get("health_status"),
		Notes:           d.Get("notes"),
	})
}

func (s animalStore) Delete(ctx context.Context, owner, id string) error {
	return s.svc.Delete(ctx, owner, id)
}

type animalsView struct {
	workflow.View[animals.Animal]
	Schema workflow.Schema
	// Confirm es el animal que se está por borrar (nombre del cache si lo hay).
	Confirm *animals.Animal
}

func (h *Handler) animalsPage(w http.ResponseWriter, r *http.Request) {
	owner := session.FromContext(r.Context()).Owner()

	var (
		v   workflow.View[animals.Animal]
		err error
	)
	if r.URL.Query().Get("new") == "1" {
		v, err = h.animals.Open(r.Context(), owner)
	} else {
		v, err = h.animals.Load(r.Context(), owner)
	}
	if err != nil {
		h.animalsFailed(w, r, err)
		return
	}
	h.renderAnimals(w, r, v, nil)
}

func (h *Handler) animalsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("action") == "cancel" {
		http.Redirect(w, r, "/animals", http.StatusSeeOther)
		return
	}

	owner := session.FromContext(r.Context()).Owner()
	draft := animalSchema.DraftFrom(r.PostForm.Get)

	v, err := h.animals.Submit(r.Context(), owner, draft)
	if errors.Is(err, workflow.ErrSubmitInProgress) {
		// Ya hay un alta en vuelo: se muestra el formulario con el botón deshabilitado.
		v, err = h.animals.Load(r.Context(), owner)
		if err == nil {
			v.State = workflow.Submitting
			v.Draft = draft
			h.renderAnimalsStatus(w, r, http.StatusConflict, v, nil)
			return
		}
	}
	if err != nil {
		h.animalsFailed(w, r, err)
		return
	}

	status := http.StatusOK
	switch {
	case len(v.Missing) > 0:
		status = http.StatusUnprocessableEntity
	case v.Alert != "":
		status = http.StatusBadGateway
	}
	h.renderAnimalsStatus(w, r, status, v, nil)
}

func (h *Handler) animalDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	owner := session.FromContext(r.Context()).Owner()
	id := chi.URLParam(r, "animalID")

	target, err := h.animalSvc.Get(r.Context(), owner, id)
	if errors.Is(err, animals.ErrNotFound) {
		http.Redirect(w, r, "/animals", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.animalsFailed(w, r, err)
		return
	}

	v, err := h.animals.Delete(r.Context(), owner, id, false)
	if err != nil {
		h.animalsFailed(w, r, err)
		return
	}
	h.renderAnimals(w, r, v, &target)
}

func (h *Handler) animalDelete(w http.ResponseWriter, r *http.Request) {
	owner := session.FromContext(r.Context()).Owner()

	v, err := h.animals.Delete(r.Context(), owner, chi.URLParam(r, "animalID"), true)
	if err != nil {
		h.animalsFailed(w, r, err)
		return
	}

	status := http.StatusOK
	if v.Alert != "" {
		status = http.StatusBadGateway
	}
	h.renderAnimalsStatus(w, r, status, v, nil)
}

func (h *Handler) animalsFailed(w http.ResponseWriter, r *http.Request, err error) {
	if h.abandoned(r, err) {
		return
	}
	h.log.Error("animals page failed", map[string]any{"err": err})
	h.renderAnimalsStatus(w, r, http.StatusBadGateway, workflow.View[animals.Animal]{QueryError: err}, nil)
}

func (h *Handler) renderAnimals(w http.ResponseWriter, r *http.Request, v workflow.View[animals.Animal], confirm *animals.Animal) {
	status := http.StatusOK
	if v.QueryError != nil {
		status = http.StatusBadGateway
	}
	h.renderAnimalsStatus(w, r, status, v, confirm)
}

func (h *Handler) renderAnimalsStatus(w http.ResponseWriter, r *http.Request, status int, v workflow.View[animals.Animal], confirm *animals.Animal) {
	h.render(w, r, status, "animals", page{
		Title:  "Animals",
		Active: "/animals",
		Body:   animalsView{View: v, Schema: animalSchema, Confirm: confirm},
	})
}
