package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hansol-jeong/plume/services/identity-service/internal/config"
	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
	"github.com/hansol-jeong/plume/services/identity-service/internal/repository"
	"github.com/hansol-jeong/plume/shared/auth"
	"github.com/hansol-jeong/plume/shared/security"
)

// IdentityUsecase defines the interface for login and registration flows.
type IdentityUsecase interface {
	// LoginOrCreateByPlatform signs in an upstream-platform identity,
	// creating the account on first login. Existing accounts are not mutated.
	LoginOrCreateByPlatform(ctx context.Context, params PlatformLoginParams) (*AuthResult, error)

	// SignUp registers an email/password account, mails a verification link
	// and grants a session immediately.
	SignUp(ctx context.Context, params CredentialsParams) (*AuthResult, error)

	// SignIn authenticates an email/password account.
	SignIn(ctx context.Context, params CredentialsParams) (*AuthResult, error)
}

// PlatformLoginParams identifies a user on an external platform
// (kakao, naver, facebook, google).
type PlatformLoginParams struct {
	Platform        string
	PlatformUserID  string
	Nickname        string
	ProfileImageURL string
}

// CredentialsParams defines the parameters for password-based operations.
type CredentialsParams struct {
	Email    string
	Password string
}

// AuthResult is handed to the boundary, which attaches the token as a
// session cookie.
type AuthResult struct {
	UserID      string
	AccessToken string
}

var (
	// ErrMissingFields reports absent required input; recoverable, shown to
	// the user as-is.
	ErrMissingFields = errors.New("email and password are required")

	// ErrMissingPlatformIdentity reports a platform login without a platform
	// user reference.
	ErrMissingPlatformIdentity = errors.New("platform and platform user id are required")

	// ErrEmailAlreadyRegistered reports a signup against a taken email.
	ErrEmailAlreadyRegistered = errors.New("an account with this email already exists")

	// ErrInvalidCredentials is deliberately identical for unknown email and
	// wrong password so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("email or password incorrect")

	// ErrInvalidCode reports an unknown or already consumed one-time code.
	ErrInvalidCode = errors.New("invalid or expired code")
)

// MailSender is the outbound notification contract. Dispatch failures fail
// the surrounding operation; codes are never mailed fire-and-forget.
type MailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

type identityUsecase struct {
	users  repository.UserRepository
	codes  CodeRegistry
	issuer *auth.TokenIssuer
	mail   MailSender
	cfg    *config.Config
}

// NewIdentityUsecase creates a new instance of IdentityUsecase.
func NewIdentityUsecase(
	users repository.UserRepository,
	codes CodeRegistry,
	issuer *auth.TokenIssuer,
	mail MailSender,
	cfg *config.Config,
) IdentityUsecase {
	return &identityUsecase{
		users:  users,
		codes:  codes,
		issuer: issuer,
		mail:   mail,
		cfg:    cfg,
	}
}

func (u *identityUsecase) LoginOrCreateByPlatform(
	ctx context.Context,
	params PlatformLoginParams,
) (*AuthResult, error) {
	if params.Platform == "" || params.PlatformUserID == "" {
		return nil, ErrMissingPlatformIdentity
	}

	user, err := u.users.GetUserByPlatform(ctx, params.Platform, params.PlatformUserID)
	if err == nil {
		return u.authResult(user.UserID)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The upstream provider already proved control of this identity, so the
	// account starts out verified.
	user, err = u.users.CreateUser(ctx, &model.User{
		UserID:          uuid.NewString(),
		Platform:        params.Platform,
		PlatformUserID:  params.PlatformUserID,
		Nickname:        params.Nickname,
		ProfileImageURL: params.ProfileImageURL,
		Verified:        true,
	})
	if err != nil {
		// A concurrent first login won the insert; use its record.
		if mongo.IsDuplicateKeyError(err) {
			user, err = u.users.GetUserByPlatform(ctx, params.Platform, params.PlatformUserID)
			if err != nil {
				return nil, err
			}
			return u.authResult(user.UserID)
		}

		return nil, err
	}

	return u.authResult(user.UserID)
}

func (u *identityUsecase) SignUp(ctx context.Context, params CredentialsParams) (*AuthResult, error) {
	if params.Email == "" || params.Password == "" {
		return nil, ErrMissingFields
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	// Accounts start unverified; the session below is granted anyway, and
	// protected actions gate on Verified.
	user, err := u.users.CreateUser(ctx, &model.User{
		UserID:       uuid.NewString(),
		Email:        params.Email,
		PasswordHash: passwordHash,
		Verified:     false,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailAlreadyRegistered
		}

		return nil, err
	}

	code, err := u.codes.IssueEmailVerification(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if err := u.sendEmailVerification(user.Email, code); err != nil {
		// Undo the staged code so no unusable link survives the failure.
		_ = u.users.ClearEmailVerification(ctx, user.UserID)
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	return u.authResult(user.UserID)
}

func (u *identityUsecase) SignIn(ctx context.Context, params CredentialsParams) (*AuthResult, error) {
	if params.Email == "" || params.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := u.users.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !security.VerifyPassword(params.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return u.authResult(user.UserID)
}

func (u *identityUsecase) authResult(userID string) (*AuthResult, error) {
	token, err := u.issuer.Issue(userID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		UserID:      userID,
		AccessToken: token,
	}, nil
}

func (u *identityUsecase) sendEmailVerification(email, code string) error {
	link := fmt.Sprintf("%s/verify-email?code=%s", u.cfg.BaseURL, code)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Please confirm your email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>If you did not create an account, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>Plume Team</p>
	`, link, link)

	return u.mail.SendHTML([]string{email}, "Verify your email", htmlBody)
}
