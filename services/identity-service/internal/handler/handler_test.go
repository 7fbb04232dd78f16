package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
	"github.com/hansol-jeong/plume/services/identity-service/internal/payload"
	"github.com/hansol-jeong/plume/services/identity-service/internal/usecase"
	"github.com/hansol-jeong/plume/shared/auth"
	"github.com/hansol-jeong/plume/shared/validation"
)

// ---- fakes ----

type fakeIdentityUsecase struct {
	result *usecase.AuthResult
	err    error

	signInCalls  int
	signUpCalls  int
	lastPlatform usecase.PlatformLoginParams
}

func (f *fakeIdentityUsecase) LoginOrCreateByPlatform(
	_ context.Context,
	params usecase.PlatformLoginParams,
) (*usecase.AuthResult, error) {
	f.lastPlatform = params
	return f.result, f.err
}

func (f *fakeIdentityUsecase) SignUp(
	_ context.Context,
	_ usecase.CredentialsParams,
) (*usecase.AuthResult, error) {
	f.signUpCalls++
	return f.result, f.err
}

func (f *fakeIdentityUsecase) SignIn(
	_ context.Context,
	_ usecase.CredentialsParams,
) (*usecase.AuthResult, error) {
	f.signInCalls++
	return f.result, f.err
}

type fakePasswordResetUsecase struct {
	requestErr error
	confirmErr error
	lastCode   string
}

func (f *fakePasswordResetUsecase) RequestPasswordReset(_ context.Context, _, _ string) error {
	return f.requestErr
}

func (f *fakePasswordResetUsecase) ConfirmPasswordReset(_ context.Context, code string) error {
	f.lastCode = code
	return f.confirmErr
}

type fakeEmailVerificationUsecase struct {
	err error
}

func (f *fakeEmailVerificationUsecase) ConfirmEmailVerification(_ context.Context, _ string) error {
	return f.err
}

// stubUserRepository serves only the session middleware lookup.
type stubUserRepository struct {
	user *model.User
}

func (s *stubUserRepository) GetUserByID(_ context.Context, userID string) (*model.User, error) {
	if s.user != nil && s.user.UserID == userID {
		return s.user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserRepository) CreateUser(context.Context, *model.User) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserRepository) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserRepository) GetUserByPlatform(context.Context, string, string) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserRepository) StageEmailVerification(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *stubUserRepository) StagePasswordReset(context.Context, string, string, string) error {
	return errors.New("not implemented")
}

func (s *stubUserRepository) ConsumeCode(
	context.Context,
	model.CodePurpose,
	string,
) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserRepository) CompletePasswordReset(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *stubUserRepository) MarkVerified(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *stubUserRepository) ClearEmailVerification(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *stubUserRepository) ClearPasswordReset(context.Context, string) error {
	return errors.New("not implemented")
}

// ---- fixture ----

type fixture struct {
	handler      http.Handler
	identity     *fakeIdentityUsecase
	reset        *fakePasswordResetUsecase
	verification *fakeEmailVerificationUsecase
	users        *stubUserRepository
	issuer       *auth.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	validate, err := validation.New()
	require.NoError(t, err)

	logger := zerolog.Nop()
	issuer := auth.NewTokenIssuer("test-secret", "plume-identity", time.Hour)

	identity := &fakeIdentityUsecase{}
	reset := &fakePasswordResetUsecase{}
	verification := &fakeEmailVerificationUsecase{}
	users := &stubUserRepository{}

	h := New(identity, reset, verification, users, issuer, nil, validate, &logger, true)

	return &fixture{
		handler:      h.Routes(),
		identity:     identity,
		reset:        reset,
		verification: verification,
		users:        users,
		issuer:       issuer,
	}
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == accessTokenCookie {
			return c
		}
	}
	return nil
}

// ---- tests ----

func TestSignIn_SetsSessionCookieAndRedirects(t *testing.T) {
	fx := newFixture(t)
	fx.identity.result = &usecase.AuthResult{UserID: "user-1", AccessToken: "token-1"}

	rec := postForm(t, fx.handler, "/signin", url.Values{
		"email":    {"a@b.com"},
		"password": {"p1"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/?info=signed+in", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	require.Equal(t, "token-1", cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
}

func TestSignIn_InvalidCredentialsRedirectsWithGenericError(t *testing.T) {
	fx := newFixture(t)
	fx.identity.err = usecase.ErrInvalidCredentials

	rec := postForm(t, fx.handler, "/signin", url.Values{
		"email":    {"a@b.com"},
		"password": {"wrong"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, usecase.ErrInvalidCredentials.Error(), loc.Query().Get("error"))
	require.Nil(t, sessionCookie(t, rec))
}

func TestSignIn_ValidationFailureSkipsUsecase(t *testing.T) {
	fx := newFixture(t)

	rec := postForm(t, fx.handler, "/signin", url.Values{"email": {"a@b.com"}})

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.NotEmpty(t, loc.Query().Get("error"))
	require.Equal(t, 0, fx.identity.signInCalls)
}

func TestSignUp_DuplicateEmailRedirectsBack(t *testing.T) {
	fx := newFixture(t)
	fx.identity.err = usecase.ErrEmailAlreadyRegistered

	rec := postForm(t, fx.handler, "/signup", url.Values{
		"email":    {"a@b.com"},
		"password": {"p1"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/signup", loc.Path)
	require.Equal(t, usecase.ErrEmailAlreadyRegistered.Error(), loc.Query().Get("error"))
}

func TestLogout_ClearsCookie(t *testing.T) {
	fx := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)
}

func TestHome_AnonymousWithoutValidSession(t *testing.T) {
	fx := newFixture(t)

	for _, cookie := range []*http.Cookie{
		nil,
		{Name: accessTokenCookie, Value: "garbage"},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}

		rec := httptest.NewRecorder()
		fx.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp payload.SessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.False(t, resp.Authenticated)
	}
}

func TestHome_ReportsSessionUser(t *testing.T) {
	fx := newFixture(t)
	fx.users.user = &model.User{
		UserID:   "user-1",
		Email:    "a@b.com",
		Nickname: "sol",
		Verified: true,
	}

	token, err := fx.issuer.Issue("user-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: token})

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp payload.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Authenticated)
	require.Equal(t, "user-1", resp.UserID)
	require.Equal(t, "sol", resp.Nickname)
	require.True(t, resp.Verified)
}

func TestConfirmEmailVerification(t *testing.T) {
	fx := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/verify-email?code=abc", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/?info=your+email+has+been+verified", rec.Header().Get("Location"))

	fx.verification.err = usecase.ErrInvalidCode
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/verify-email?code=bad", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmPasswordReset(t *testing.T) {
	fx := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/reset-password?code=abc", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "abc", fx.reset.lastCode)

	fx.reset.confirmErr = usecase.ErrInvalidCode
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reset-password?code=bad", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestPasswordReset_AlwaysReportsSuccess(t *testing.T) {
	fx := newFixture(t)

	rec := postForm(t, fx.handler, "/request-reset-password", url.Values{
		"email":    {"ghost@b.com"},
		"password": {"p2"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.NotEmpty(t, loc.Query().Get("info"))
}

func TestPlatformLogin_TrustedPlatform(t *testing.T) {
	fx := newFixture(t)
	fx.identity.result = &usecase.AuthResult{UserID: "user-1", AccessToken: "token-1"}

	body := strings.NewReader(`{"platform_user_id":"kakao-123","nickname":"sol"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/kakao", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "kakao", fx.identity.lastPlatform.Platform)
	require.Equal(t, "kakao-123", fx.identity.lastPlatform.PlatformUserID)

	var resp payload.PlatformLoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "user-1", resp.UserID)
	require.Equal(t, "token-1", resp.AccessToken)
	require.NotNil(t, sessionCookie(t, rec))
}

func TestPlatformLogin_GoogleRequiresIDToken(t *testing.T) {
	fx := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
