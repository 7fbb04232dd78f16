package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// accessTokenCookie names the session cookie holding the signed token.
const accessTokenCookie = "access_token"

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flash messages ride on query parameters; the frontend renders them and
// strips them from the address bar. Success and failure share the same
// shape, distinguished only by which parameter is set.
func redirectWithInfo(w http.ResponseWriter, r *http.Request, dest, msg string) {
	redirectWith(w, r, dest, "info", msg)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, dest, msg string) {
	redirectWith(w, r, dest, "error", msg)
}

func redirectWith(w http.ResponseWriter, r *http.Request, dest, key, msg string) {
	u, err := url.Parse(dest)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	q := u.Query()
	q.Set(key, msg)
	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusFound)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
