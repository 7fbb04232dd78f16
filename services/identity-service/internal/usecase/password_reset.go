package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hansol-jeong/plume/services/identity-service/internal/config"
	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
	"github.com/hansol-jeong/plume/services/identity-service/internal/repository"
	"github.com/hansol-jeong/plume/shared/security"
)

// PasswordResetUsecase defines the business logic for the password reset
// flow. The requested replacement password is hashed and staged up front;
// the active password changes only when the mailed code is confirmed.
type PasswordResetUsecase interface {
	// RequestPasswordReset stages newPassword and mails a confirmation link.
	// An unknown email is reported as success so responses cannot be used to
	// enumerate accounts.
	RequestPasswordReset(ctx context.Context, email, newPassword string) error

	// ConfirmPasswordReset consumes the code and promotes the staged
	// password. The code works exactly once.
	ConfirmPasswordReset(ctx context.Context, code string) error
}

type passwordResetUsecase struct {
	users repository.UserRepository
	codes CodeRegistry
	mail  MailSender
	cfg   *config.Config
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	users repository.UserRepository,
	codes CodeRegistry,
	mail MailSender,
	cfg *config.Config,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		users: users,
		codes: codes,
		mail:  mail,
		cfg:   cfg,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email, newPassword string) error {
	if email == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := u.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does
			// not exist.
			return nil
		}
		return err
	}

	pendingHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Issuing replaces any outstanding reset; only the latest mailed link is
	// valid.
	code, err := u.codes.IssuePasswordReset(ctx, user.UserID, pendingHash)
	if err != nil {
		return err
	}

	if err := u.sendPasswordReset(user.Email, code); err != nil {
		// Undo the staged reset so no unusable link survives the failure.
		_ = u.users.ClearPasswordReset(ctx, user.UserID)
		return fmt.Errorf("send password reset email: %w", err)
	}

	return nil
}

func (u *passwordResetUsecase) ConfirmPasswordReset(ctx context.Context, code string) error {
	if code == "" {
		return ErrInvalidCode
	}

	user, err := u.codes.Consume(ctx, model.PurposePasswordReset, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidCode
		}
		return err
	}

	// A consumed code without a staged password means the reset was already
	// completed or never properly requested.
	if user.PendingPassword == "" {
		return ErrInvalidCode
	}

	return u.users.CompletePasswordReset(ctx, user.UserID, user.PendingPassword)
}

func (u *passwordResetUsecase) sendPasswordReset(email, code string) error {
	link := fmt.Sprintf("%s/reset-password?code=%s", u.cfg.BaseURL, code)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to switch to your new password:</p>

		<p><a href="%s">%s</a></p>

		<p>If you did not request a password reset, you can safely ignore this email and your password will remain unchanged.</p>

		<p>Thank you,</p>
		<p>Plume Team</p>
	`, link, link)

	return u.mail.SendHTML([]string{email}, "Password Reset Request", htmlBody)
}
