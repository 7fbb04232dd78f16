package usecase

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
)

var errSMTPDown = errors.New("smtp down")

// ---- fakes ----

// fakeUserRepository is an in-memory repository.UserRepository mirroring the
// Mongo semantics the usecases rely on: ErrNoDocuments on a miss, duplicate
// key errors on unique index violations, and claim-once ConsumeCode.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*model.User)}
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "duplicate key error"},
		},
	}
}

func clone(u *model.User) *model.User {
	c := *u
	return &c
}

// stored returns the live record for assertions.
func (f *fakeUserRepository) stored(userID string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[userID]
}

func (f *fakeUserRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if user.Email != "" && existing.Email == user.Email {
			return nil, duplicateKeyError()
		}
		if user.Platform != "" && existing.Platform == user.Platform &&
			existing.PlatformUserID == user.PlatformUserID {
			return nil, duplicateKeyError()
		}
	}

	f.users[user.UserID] = clone(user)
	return user, nil
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user, ok := f.users[userID]; ok {
		return clone(user), nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return clone(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepository) GetUserByPlatform(
	_ context.Context,
	platform, platformUserID string,
) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Platform == platform && user.PlatformUserID == platformUserID {
			return clone(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepository) StageEmailVerification(_ context.Context, userID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.EmailVerificationCode = code
	return nil
}

func (f *fakeUserRepository) StagePasswordReset(_ context.Context, userID, code, pendingHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.PasswordResetCode = code
	user.PendingPassword = pendingHash
	return nil
}

func (f *fakeUserRepository) ConsumeCode(
	_ context.Context,
	purpose model.CodePurpose,
	code string,
) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if code == "" {
		return nil, mongo.ErrNoDocuments
	}

	for _, user := range f.users {
		switch purpose {
		case model.PurposeEmailVerification:
			if user.EmailVerificationCode == code {
				before := clone(user)
				user.EmailVerificationCode = ""
				return before, nil
			}
		case model.PurposePasswordReset:
			if user.PasswordResetCode == code {
				before := clone(user)
				user.PasswordResetCode = ""
				return before, nil
			}
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepository) CompletePasswordReset(_ context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.PasswordHash = passwordHash
	user.PendingPassword = ""
	return nil
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Verified = true
	return nil
}

func (f *fakeUserRepository) ClearEmailVerification(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.EmailVerificationCode = ""
	return nil
}

func (f *fakeUserRepository) ClearPasswordReset(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.PasswordResetCode = ""
	user.PendingPassword = ""
	return nil
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type fakeMailSender struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (f *fakeMailSender) SendHTML(to []string, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, sentMail{
		To:      append([]string(nil), to...),
		Subject: subject,
		Body:    htmlBody,
	})
	return nil
}

func (f *fakeMailSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMailSender) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}
