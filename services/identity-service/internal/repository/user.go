package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hansol-jeong/plume/services/identity-service/internal/model"
)

// UserRepository defines the interface for user-related database operations.
// Lookups that match nothing return mongo.ErrNoDocuments.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByPlatform(ctx context.Context, platform, platformUserID string) (*model.User, error)

	// StageEmailVerification stores a fresh email-verification code,
	// replacing any outstanding one.
	StageEmailVerification(ctx context.Context, userID, code string) error

	// StagePasswordReset stores a fresh reset code together with the staged
	// replacement password hash, replacing any outstanding pair.
	StagePasswordReset(ctx context.Context, userID, code, pendingHash string) error

	// ConsumeCode atomically claims the given code: the matching user is
	// returned as it was before the code field was cleared, and no later call
	// with the same code can match again.
	ConsumeCode(ctx context.Context, purpose model.CodePurpose, code string) (*model.User, error)

	// CompletePasswordReset promotes the given hash to the active password and
	// drops the staged one.
	CompletePasswordReset(ctx context.Context, userID, passwordHash string) error

	MarkVerified(ctx context.Context, userID string) error

	// ClearEmailVerification and ClearPasswordReset roll back a staged code
	// when the notification referencing it could not be delivered.
	ClearEmailVerification(ctx context.Context, userID string) error
	ClearPasswordReset(ctx context.Context, userID string) error
}

const userCollection = "users"

// Bson fields holding single-use codes, by purpose.
var codeFields = map[model.CodePurpose]string{
	model.PurposeEmailVerification: "email_verification_code",
	model.PurposePasswordReset:     "password_reset_code",
}

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates a new MongoDB repository for users.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{
				{Key: "platform", Value: 1},
				{Key: "platform_user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByPlatform(
	ctx context.Context,
	platform, platformUserID string,
) (*model.User, error) {
	return r.findOne(ctx, bson.M{
		"platform":         platform,
		"platform_user_id": platformUserID,
	})
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) StageEmailVerification(ctx context.Context, userID, code string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"email_verification_code": code,
			"updated_at":              time.Now(),
		},
	})
}

func (r *userMongoRepository) StagePasswordReset(ctx context.Context, userID, code, pendingHash string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"password_reset_code": code,
			"pending_password":    pendingHash,
			"updated_at":          time.Now(),
		},
	})
}

func (r *userMongoRepository) ConsumeCode(
	ctx context.Context,
	purpose model.CodePurpose,
	code string,
) (*model.User, error) {
	field, ok := codeFields[purpose]
	if !ok {
		return nil, errors.New("unknown code purpose")
	}

	// A single find-and-update claims the code: whichever request matches
	// first clears the field, so the loser sees ErrNoDocuments exactly as if
	// the code never existed.
	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{field: code},
		bson.M{
			"$unset": bson.M{field: ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) CompletePasswordReset(ctx context.Context, userID, passwordHash string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		},
		"$unset": bson.M{"pending_password": ""},
	})
}

func (r *userMongoRepository) MarkVerified(ctx context.Context, userID string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"verified":   true,
			"updated_at": time.Now(),
		},
	})
}

func (r *userMongoRepository) ClearEmailVerification(ctx context.Context, userID string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$unset": bson.M{"email_verification_code": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	})
}

func (r *userMongoRepository) ClearPasswordReset(ctx context.Context, userID string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$unset": bson.M{
			"password_reset_code": "",
			"pending_password":    "",
		},
		"$set": bson.M{"updated_at": time.Now()},
	})
}

func (r *userMongoRepository) updateOne(ctx context.Context, userID string, update bson.M) error {
	result, err := r.db.Collection(userCollection).UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
