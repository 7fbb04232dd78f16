package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hansol-jeong/plume/services/identity-service/internal/payload"
	"github.com/hansol-jeong/plume/services/identity-service/internal/repository"
	"github.com/hansol-jeong/plume/services/identity-service/internal/usecase"
	"github.com/hansol-jeong/plume/shared/auth"
	"github.com/hansol-jeong/plume/shared/provider"
	"github.com/hansol-jeong/plume/shared/validation"
)

// Handler is the HTTP boundary of the identity service. It owns the session
// cookie and the redirect-with-flash responses; all identity state changes
// happen in the usecases.
type Handler struct {
	identity          usecase.IdentityUsecase
	passwordReset     usecase.PasswordResetUsecase
	emailVerification usecase.EmailVerificationUsecase
	users             repository.UserRepository
	issuer            *auth.TokenIssuer
	google            *provider.GoogleOAuthProvider
	validate          *validation.Validator
	logger            *zerolog.Logger
	cookieSecure      bool
}

// New creates the HTTP handler with its collaborators injected.
func New(
	identity usecase.IdentityUsecase,
	passwordReset usecase.PasswordResetUsecase,
	emailVerification usecase.EmailVerificationUsecase,
	users repository.UserRepository,
	issuer *auth.TokenIssuer,
	google *provider.GoogleOAuthProvider,
	validate *validation.Validator,
	logger *zerolog.Logger,
	cookieSecure bool,
) *Handler {
	return &Handler{
		identity:          identity,
		passwordReset:     passwordReset,
		emailVerification: emailVerification,
		users:             users,
		issuer:            issuer,
		google:            google,
		validate:          validate,
		logger:            logger,
		cookieSecure:      cookieSecure,
	}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.session)

	r.Get("/", h.home)
	r.Post("/signup", h.signUp)
	r.Post("/signin", h.signIn)
	r.Get("/logout", h.logout)
	r.Post("/auth/{platform}", h.platformLogin)
	r.Post("/request-reset-password", h.requestPasswordReset)
	r.Get("/reset-password", h.confirmPasswordReset)
	r.Get("/verify-email", h.confirmEmailVerification)

	return r
}

// home reports the identity behind the session cookie so the posting
// frontend can decide between the feed and the signin page.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		h.writeJSON(w, http.StatusOK, payload.SessionResponse{Authenticated: false})
		return
	}

	h.writeJSON(w, http.StatusOK, payload.SessionResponse{
		Authenticated: true,
		UserID:        user.UserID,
		Email:         user.Email,
		Nickname:      user.Nickname,
		Verified:      user.Verified,
	})
}
