package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
	"github.com/hansol-jeong/plume/services/identity-service/internal/repository"
)

// CodeRegistry manages the lifecycle of single-use verification codes.
// Issuing a code replaces any outstanding one of the same purpose, so only
// the most recently mailed link works. Consuming is atomic and single-use:
// once a code is claimed, a second attempt is indistinguishable from a code
// that never existed.
type CodeRegistry interface {
	IssueEmailVerification(ctx context.Context, userID string) (string, error)
	IssuePasswordReset(ctx context.Context, userID, pendingHash string) (string, error)
	Consume(ctx context.Context, purpose model.CodePurpose, code string) (*model.User, error)
}

type codeRegistry struct {
	users repository.UserRepository
}

// NewCodeRegistry creates a CodeRegistry persisting codes on user records.
func NewCodeRegistry(users repository.UserRepository) CodeRegistry {
	return &codeRegistry{users: users}
}

func (r *codeRegistry) IssueEmailVerification(ctx context.Context, userID string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	if err := r.users.StageEmailVerification(ctx, userID, code); err != nil {
		return "", err
	}

	return code, nil
}

func (r *codeRegistry) IssuePasswordReset(ctx context.Context, userID, pendingHash string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	if err := r.users.StagePasswordReset(ctx, userID, code, pendingHash); err != nil {
		return "", err
	}

	return code, nil
}

func (r *codeRegistry) Consume(
	ctx context.Context,
	purpose model.CodePurpose,
	code string,
) (*model.User, error) {
	return r.users.ConsumeCode(ctx, purpose, code)
}

// generateCode returns a 256-bit unguessable code, hex-encoded for use in
// confirmation links.
func generateCode() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
