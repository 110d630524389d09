package httpapi

import (
	"net/http"

	"greetly.org/internal/auth"
	"greetly.org/internal/obs"
)

const sessionCookieName = "gl_session"

func sessionCookie(tok auth.IssuedToken) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    tok.Value,
		Path:     "/",
		MaxAge:   tok.MaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// withSession resumes the session carried by the request cookie, installs
// the resulting principal on the context and writes any replacement or
// clearing cookie decided by the session core. Requests without a cookie,
// and requests whose token fails validation, continue anonymously.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		session := a.auth.Resume(r.Context(), cookie.Value)
		if session.Clear {
			http.SetCookie(w, clearSessionCookie())
			obs.SessionIssued("clear")
			next.ServeHTTP(w, r)
			return
		}
		if !session.Authenticated {
			next.ServeHTTP(w, r)
			return
		}
		if session.Refresh != nil {
			http.SetCookie(w, sessionCookie(*session.Refresh))
			obs.SessionIssued("refresh")
		}

		ctx := auth.ContextWithPrincipal(r.Context(), session.Principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
