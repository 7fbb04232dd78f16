package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
	"github.com/hansol-jeong/plume/services/identity-service/internal/repository"
)

// EmailVerificationUsecase completes the confirmation flow started at
// signup. There is no standalone re-request operation; signup stages the
// code and mails the link.
type EmailVerificationUsecase interface {
	ConfirmEmailVerification(ctx context.Context, code string) error
}

type emailVerificationUsecase struct {
	users repository.UserRepository
	codes CodeRegistry
}

// NewEmailVerificationUsecase creates a new instance of EmailVerificationUsecase.
func NewEmailVerificationUsecase(
	users repository.UserRepository,
	codes CodeRegistry,
) EmailVerificationUsecase {
	return &emailVerificationUsecase{
		users: users,
		codes: codes,
	}
}

func (u *emailVerificationUsecase) ConfirmEmailVerification(ctx context.Context, code string) error {
	if code == "" {
		return ErrInvalidCode
	}

	user, err := u.codes.Consume(ctx, model.PurposeEmailVerification, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidCode
		}
		return err
	}

	return u.users.MarkVerified(ctx, user.UserID)
}
