package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hansol-jeong/plume/services/identity-service/internal/payload"
	"github.com/hansol-jeong/plume/services/identity-service/internal/usecase"
)

const platformGoogle = "google"

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	req := payload.SignUpRequest{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		redirectWithError(w, r, "/signup", h.validate.Translate(err))
		return
	}

	result, err := h.identity.SignUp(r.Context(), usecase.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyRegistered) || errors.Is(err, usecase.ErrMissingFields) {
			redirectWithError(w, r, "/signup", err.Error())
			return
		}

		h.logger.Error().Err(err).Msg("failed to sign up")
		redirectWithError(w, r, "/signup", "something went wrong, please try again")
		return
	}

	h.setSessionCookie(w, result.AccessToken)
	redirectWithInfo(w, r, "/", "welcome! please check your email to verify your account")
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	req := payload.SignInRequest{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		redirectWithError(w, r, "/", h.validate.Translate(err))
		return
	}

	result, err := h.identity.SignIn(r.Context(), usecase.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) || errors.Is(err, usecase.ErrMissingFields) {
			redirectWithError(w, r, "/", err.Error())
			return
		}

		h.logger.Error().Err(err).Msg("failed to sign in")
		redirectWithError(w, r, "/", "something went wrong, please try again")
		return
	}

	h.setSessionCookie(w, result.AccessToken)
	redirectWithInfo(w, r, "/", "signed in")
}

// logout clears the cookie; with stateless tokens there is nothing to
// invalidate server-side.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) platformLogin(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")

	var req payload.PlatformLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params := usecase.PlatformLoginParams{
		Platform:        platform,
		PlatformUserID:  req.PlatformUserID,
		Nickname:        req.Nickname,
		ProfileImageURL: req.ProfileImageURL,
	}

	// Google credentials are verified server-side; the other platform SDKs
	// are trusted upstream and post their profile directly.
	if platform == platformGoogle {
		if req.IDToken == "" {
			http.Error(w, "id_token is required", http.StatusBadRequest)
			return
		}

		info, err := h.google.ValidateIDToken(r.Context(), req.IDToken)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to validate google id token")
			http.Error(w, "invalid id token", http.StatusUnauthorized)
			return
		}
		params.PlatformUserID = info.UserId

		if req.AccessToken != "" && (params.Nickname == "" || params.ProfileImageURL == "") {
			if userInfo, err := h.google.GetUserInfo(r.Context(), req.AccessToken); err == nil {
				if params.Nickname == "" {
					params.Nickname = userInfo.Name
				}
				if params.ProfileImageURL == "" {
					params.ProfileImageURL = userInfo.Picture
				}
			}
		}
	}

	result, err := h.identity.LoginOrCreateByPlatform(r.Context(), params)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingPlatformIdentity) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		h.logger.Error().Err(err).Msg("failed to login by platform")
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, result.AccessToken)
	h.writeJSON(w, http.StatusOK, payload.PlatformLoginResponse{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
	})
}
