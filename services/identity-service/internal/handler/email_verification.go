package handler

import (
	"errors"
	"net/http"

	"github.com/hansol-jeong/plume/services/identity-service/internal/usecase"
)

func (h *Handler) confirmEmailVerification(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	err := h.emailVerification.ConfirmEmailVerification(r.Context(), code)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCode) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		h.logger.Error().Err(err).Msg("failed to confirm email verification")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	redirectWithInfo(w, r, "/", "your email has been verified")
}
