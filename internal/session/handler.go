package session

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone el estado de la sesión para clientes JSON.
func RegisterRoutes(r chi.Router) {
	r.Get("/api/session", getSessionHandler())
}

type sessionResponse struct {
	Status      Status `json:"status" example:"authenticated"`
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// getSessionHandler godoc
// @Summary Estado de la sesión
// @Description Devuelve loading, authenticated o unauthenticated y el usuario si lo hay. Nunca devuelve tokens.
// @Tags session
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} sessionResponse
// @Router /api/session [get]
func getSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := FromContext(r.Context())
		resp := sessionResponse{Status: st.Status}
		if st.Authenticated() {
			resp.UserID = st.UserID
			resp.Email = st.Email
			resp.DisplayName = st.DisplayName
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
