package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/auth"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
)

func (h *handler) checkUser(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	method, err := h.identity.CheckUser(r.Context(), req.Email)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"exists":           method != services.LoginUnknown,
		"hasPassword":      method == services.LoginPasswordRequired,
		"requiresPassword": method == services.LoginPasswordRequired,
	})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	acc, err := h.identity.Register(r.Context(), req.Name, req.Email, req.Password, req.Company, req.Phone, common.RoleClient)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	token, ok := h.startSession(r.Context(), w, acc)
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    toUserDTO(acc),
		"token":   token,
		"message": "Registration successful",
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	acc, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	token, ok := h.startSession(r.Context(), w, acc)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  toUserDTO(acc),
		"token": token,
	})
}

func (h *handler) sendCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	email, err := h.verification.RequestCode(r.Context(), req.Email)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent successfully",
		"email":   email,
	})
}

func (h *handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	acc, err := h.verification.RedeemCode(r.Context(), req.Email, req.Code, services.Profile{
		Name:     req.Name,
		Company:  req.Company,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	token, ok := h.startSession(r.Context(), w, acc)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Email verified successfully",
		"user":    toUserDTO(acc),
		"token":   token,
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.issuer.Revoke(r.Context(), token); err != nil {
			h.logger.Warn(r.Context(), "revoke session failed", "error", err)
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": id})
}

// startSession issues a credential for acc and sets the session cookie.
// On failure it writes the error response and returns false.
func (h *handler) startSession(ctx context.Context, w http.ResponseWriter, acc *models.Account) (string, bool) {
	token, expiresAt, err := h.issuer.Issue(ctx, auth.IdentityFromAccount(acc))
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return "", false
	}
	h.setSessionCookie(w, token, expiresAt)
	return token, true
}
