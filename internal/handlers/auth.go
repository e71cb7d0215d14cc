package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/shopdesk/internal/validation"
)

// HandleLogin signs in and stores the returned token in a cookie
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if err := decodeJSON(w, r, &form); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}

	cred, err := h.catalog.SignIn(r.Context(), form.Username, form.Password)
	if err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    cred.Token,
		Path:     "/",
		Expires:  cred.Expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("Admin signed in", "username", form.Username, "expires", cred.Expires)
	h.writeJSON(w, http.StatusOK, cred)
}

func (h *Handler) HandleUserCheck(w http.ResponseWriter, r *http.Request) {
	token, err := tokenFrom(r)
	if err != nil {
		h.writeFailure(w, err, http.StatusUnauthorized)
		return
	}
	if err := h.catalog.CheckUser(r.Context(), token); err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleAdminProducts returns one page of the admin product list
func (h *Handler) HandleAdminProducts(w http.ResponseWriter, r *http.Request) {
	token, err := tokenFrom(r)
	if err != nil {
		h.writeFailure(w, err, http.StatusUnauthorized)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			h.writeError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	result, err := h.catalog.ListAdminProducts(r.Context(), token, page)
	if err != nil {
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
