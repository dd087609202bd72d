package web

import (
	"errors"
	"net/http"
	"strings"

	"muroro-livestock/internal/ports/auth"
	"muroro-livestock/internal/session"
)

const verificationNotice = "Please check your email for verification link"

type authView struct {
	SignUp    bool
	Email     string
	FirstName string
	LastName  string
	Error     string
	Notice    string
}

func (h *Handler) authPage(w http.ResponseWriter, r *http.Request) {
	v := authView{SignUp: r.URL.Query().Get("mode") == "signup"}
	h.render(w, r, http.StatusOK, "auth", page{Title: "Sign In", Body: v})
}

func (h *Handler) authSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	v := authView{
		SignUp:    r.PostForm.Get("mode") == "signup",
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
	}
	password := r.PostForm.Get("password")

	if v.SignUp {
		res, err := h.sessions.SignUp(r.Context(), w, r, session.SignUpInput{
			Email:     v.Email,
			Password:  password,
			FirstName: v.FirstName,
			LastName:  v.LastName,
		})
		if err != nil {
			h.authFailed(w, r, v, err)
			return
		}
		if res.NeedsEmailVerification {
			v.Notice = verificationNotice
			h.render(w, r, http.StatusOK, "auth", page{Title: "Sign Up", Body: v})
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.SignIn(r.Context(), w, r, v.Email, password); err != nil {
		h.authFailed(w, r, v, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) authFailed(w http.ResponseWriter, r *http.Request, v authView, err error) {
	if h.abandoned(r, err) {
		return
	}
	status := http.StatusBadGateway
	if errors.Is(err, auth.ErrUnauthorized) {
		status = http.StatusUnauthorized
	}
	h.log.Info("authentication failed", map[string]any{"email": v.Email, "signup": v.SignUp, "err": err})

	v.Error = err.Error()
	h.render(w, r, status, "auth", page{Title: "Sign In", Body: v})
}

// signOut invalida la sesión antes de redirigir a /auth.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context(), w, r)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}
