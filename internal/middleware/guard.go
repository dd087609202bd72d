package middleware

import (
	"net/http"

	"muroro-livestock/internal/session"
)

// Decision es lo que hace un guard con un request según el estado de sesión.
type Decision int

const (
	Render Decision = iota
	RenderLoading
	RedirectAuth
	RedirectRoot
)

const (
	AuthPath = "/auth"
	RootPath = "/"
)

// Protected: solo con sesión autenticada.
func Protected(status session.Status) Decision {
	switch status {
	case session.StatusAuthenticated:
		return Render
	case session.StatusUnauthenticated:
		return RedirectAuth
	default:
		return RenderLoading
	}
}

// Public: solo sin sesión (p. ej. /auth).
func Public(status session.Status) Decision {
	switch status {
	case session.StatusUnauthenticated:
		return Render
	case session.StatusAuthenticated:
		return RedirectRoot
	default:
		return RenderLoading
	}
}

// RequireSession aplica Protected. loading se renderiza mientras la sesión no se resuelva.
func RequireSession(loading http.Handler) func(http.Handler) http.Handler {
	return guard(Protected, loading)
}

// PublicOnly aplica Public.
func PublicOnly(loading http.Handler) func(http.Handler) http.Handler {
	return guard(Public, loading)
}

func guard(decide func(session.Status) Decision, loading http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := session.FromContext(r.Context())
			switch decide(st.Status) {
			case Render:
				next.ServeHTTP(w, r)
			case RedirectAuth:
				http.Redirect(w, r, AuthPath, http.StatusSeeOther)
			case RedirectRoot:
				http.Redirect(w, r, RootPath, http.StatusSeeOther)
			default:
				if loading == nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				loading.ServeHTTP(w, r)
			}
		})
	}
}
