package dashboard

import (
	"encoding/json"
	"net/http"

	"muroro-livestock/internal/session"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/dashboard", getDashboardHandler(svc))
}

type statsResponse struct {
	Stats
	FeedStockLabel string `json:"feed_stock_label" example:"0 kg"`
}

// getDashboardHandler godoc
// @Summary Resumen del tablero
// @Description Total de animales, huevos recolectados, stock de alimento y animales enfermos del usuario. Los aggregates sin datos vuelven como 0.
// @Tags dashboard
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} statsResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {string} string "error del backend"
// @Router /api/dashboard [get]
func getDashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := session.FromContext(r.Context()).Owner()
		if owner == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		st, err := svc.Stats(r.Context(), owner)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{Stats: st, FeedStockLabel: st.FeedStockLabel()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
