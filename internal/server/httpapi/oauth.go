package httpapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	oauthStateCookie = "eastsecure_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

func (h *handler) oauthStart(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.oauth.Get(mux.Vars(r)["provider"])
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown provider"})
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/oauth",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, flow.AuthCodeURL(state), http.StatusFound)
}

func (h *handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	flow, ok := h.oauth.Get(provider)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown provider"})
		return
	}

	q := r.URL.Query()
	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid oauth state"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/oauth", MaxAge: -1})

	ctx := r.Context()
	profile, err := flow.Exchange(ctx, q.Get("code"))
	if err != nil {
		h.logger.Warn(ctx, "oauth exchange failed", "provider", provider, "error", err)
		http.Redirect(w, r, h.portalRedirect("oauth_failed"), http.StatusFound)
		return
	}

	acc, err := h.identity.SignInExternal(ctx, profile.Email, profile.Name)
	if err != nil {
		h.logger.Error(ctx, "oauth sign-in failed", "provider", provider, "error", err)
		http.Redirect(w, r, h.portalRedirect("oauth_failed"), http.StatusFound)
		return
	}

	if _, ok := h.startSession(ctx, w, acc); !ok {
		return
	}
	http.Redirect(w, r, h.portalURL, http.StatusFound)
}

func (h *handler) portalRedirect(code string) string {
	u, err := url.Parse(h.portalURL)
	if err != nil {
		return h.portalURL
	}
	q := u.Query()
	q.Set("error", code)
	u.RawQuery = q.Encode()
	return u.String()
}
