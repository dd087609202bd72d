package web

import (
	"net/http"
	"strconv"
)

type stubView struct {
	Href     string
	Heading  string
	Subtitle string
	Message  string
}

// Páginas sin datos todavía.
var (
	eggsStub = stubView{
		Href:     "/eggs",
		Heading:  "Egg Tracking",
		Subtitle: "Record your daily egg collection",
		Message:  "Egg tracking functionality coming soon...",
	}
	feedsStub = stubView{
		Href:     "/feeds",
		Heading:  "Feed Management",
		Subtitle: "Track your livestock feed inventory",
		Message:  "Feed management functionality coming soon...",
	}
	feedingStub = stubView{
		Href:     "/feeding",
		Heading:  "Feeding Records",
		Subtitle: "Track animal feeding and manage feed usage",
		Message:  "Feeding records functionality coming soon...",
	}
)

func (h *Handler) stubPage(v stubView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, "stub", page{Title: v.Heading, Active: v.Href, Body: v})
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
