package web

import (
	"net/http"

	"muroro-livestock/internal/domain/dashboard"
	"muroro-livestock/internal/session"
)

type statCard struct {
	Name  string
	Value string
	Color string
}

type dashboardView struct {
	SignInPrompt bool
	Error        string
	Cards        []statCard
	Stats        dashboard.Stats
}

func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	owner := session.FromContext(r.Context()).Owner()
	if owner == "" {
		h.render(w, r, http.StatusOK, "dashboard", page{Title: "Dashboard", Active: "/", Body: dashboardView{SignInPrompt: true}})
		return
	}

	st, err := h.dashboard.Stats(r.Context(), owner)
	if err != nil {
		if h.abandoned(r, err) {
			return
		}
		h.log.Warn("dashboard read failed", map[string]any{"user_id": owner, "err": err})
		h.render(w, r, http.StatusBadGateway, "dashboard", page{Title: "Dashboard", Active: "/", Body: dashboardView{Error: err.Error()}})
		return
	}

	v := dashboardView{
		Stats: st,
		Cards: []statCard{
			{Name: "Total Animals", Value: itoa(st.TotalAnimals), Color: "royal-blue"},
			{Name: "Eggs Collected", Value: st.EggsLabel(), Color: "success"},
			{Name: "Feed Stock", Value: st.FeedStockLabel(), Color: "warning"},
		},
	}
	h.render(w, r, http.StatusOK, "dashboard", page{Title: "Dashboard", Active: "/", Body: v})
}
