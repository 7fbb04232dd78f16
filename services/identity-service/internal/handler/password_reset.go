package handler

import (
	"errors"
	"net/http"

	"github.com/hansol-jeong/plume/services/identity-service/internal/payload"
	"github.com/hansol-jeong/plume/services/identity-service/internal/usecase"
)

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	req := payload.PasswordResetRequest{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		redirectWithError(w, r, "/request-reset-password", h.validate.Translate(err))
		return
	}

	err := h.passwordReset.RequestPasswordReset(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingFields) {
			redirectWithError(w, r, "/request-reset-password", err.Error())
			return
		}

		h.logger.Error().Err(err).Msg("failed to request password reset")
		redirectWithError(w, r, "/request-reset-password", "something went wrong, please try again")
		return
	}

	// Unknown addresses get the same answer as known ones.
	redirectWithInfo(w, r, "/", "password reset requested, please check your email")
}

func (h *Handler) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	err := h.passwordReset.ConfirmPasswordReset(r.Context(), code)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCode) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		h.logger.Error().Err(err).Msg("failed to confirm password reset")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	redirectWithInfo(w, r, "/", "your password has been changed, please sign in with the new password")
}
