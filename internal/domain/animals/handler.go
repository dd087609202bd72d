package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"muroro-livestock/internal/session"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta la API JSON de animales. Las páginas HTML viven en internal/web.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/animals", func(ar chi.Router) {
		ar.Get("/", listAnimalsHandler(svc))
		ar.Post("/", createAnimalHandler(svc))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc))
	})
}

type createAnimalRequest struct {
	Type            string `json:"type" example:"Cow"`
	Breed           string `json:"breed" example:"Holstein"`
	Name            string `json:"name" example:"Bessie"`
	BirthDate       string `json:"birth_date" example:"2023-04-12"`       // YYYY-MM-DD opcional
	AcquisitionDate string `json:"acquisition_date" example:"2024-01-05"` // YYYY-MM-DD opcional
	Status          string `json:"status" example:"active"`
	HealthStatus    string `json:"health_status" example:"healthy"`
	Notes           string `json:"notes"`
}

type animalResponse struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Type            Type         `json:"type"`
	Breed           string       `json:"breed"`
	Name            *string      `json:"name"`
	BirthDate       *string      `json:"birth_date"`
	AcquisitionDate *string      `json:"acquisition_date"`
	Status          Status       `json:"status"`
	HealthStatus    HealthStatus `json:"health_status"`
	Notes           *string      `json:"notes"`
	CreatedAt       time.Time    `json:"created_at"`
}

// createAnimalHandler godoc
// @Summary Registrar un animal
// @Description Crea un animal del usuario autenticado. `type` y `breed` son obligatorios; `status` y `health_status` toman `active` y `healthy` por defecto. Autenticación: cookie de sesión o `Authorization: Bearer <token>`.
// @Tags animals
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body createAnimalRequest true "Datos del animal; fechas en formato YYYY-MM-DD"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / campos requeridos"
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {string} string "error del backend"
// @Router /api/animals [post]
func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.FromContext(r.Context()).Owner()
		if owner == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), owner, CreateInput{
			Type:            req.Type,
			Breed:           req.Breed,
			Name:            req.Name,
			BirthDate:       req.BirthDate,
			AcquisitionDate: req.AcquisitionDate,
			Status:          req.Status,
			HealthStatus:    req.HealthStatus,
			Notes:           req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Description Animales del usuario autenticado, más recientes primero.
// @Tags animals
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {string} string "error del backend"
// @Router /api/animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.FromContext(r.Context()).Owner()
		if owner == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), owner)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// deleteAnimalHandler godoc
// @Summary Eliminar un animal
// @Description Borra un animal del usuario. Requiere `confirm=true`: sin confirmación no se borra nada.
// @Tags animals
// @Param Authorization header string false "Bearer token"
// @Param animalID path string true "ID del animal"
// @Param confirm query bool true "Debe ser true"
// @Success 204 "borrado"
// @Failure 400 {string} string "confirmation required"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Failure 502 {string} string "error del backend"
// @Router /api/animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.FromContext(r.Context()).Owner()
		if owner == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("confirm")), "true") {
			http.Error(w, "confirmation required", http.StatusBadRequest)
			return
		}

		if err := svc.Delete(r.Context(), owner, chi.URLParam(r, "animalID")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	default:
		// El mensaje del backend va tal cual.
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		Type:            a.Type,
		Breed:           a.Breed,
		Name:            optional(a.Name),
		BirthDate:       optional(FormatDate(a.BirthDate)),
		AcquisitionDate: optional(FormatDate(a.AcquisitionDate)),
		Status:          a.Status,
		HealthStatus:    a.HealthStatus,
		Notes:           optional(a.Notes),
		CreatedAt:       a.CreatedAt,
	}
}

// vacío => null
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
