package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a durable identity in the posting service.
//
// Every user carries at least one of a platform identity pair
// (Platform + PlatformUserID) or an Email. Platform accounts come from a
// trusted upstream provider and never hold a password; email accounts hold
// an argon2id password hash and go through email confirmation.
//
// One-time codes are embedded in the user document so that issuing and
// consuming them rides on Mongo's per-document atomicity.
type User struct {
	ID     bson.ObjectID `bson:"_id,omitempty"`
	UserID string        `bson:"user_id"`

	Platform       string `bson:"platform,omitempty"`
	PlatformUserID string `bson:"platform_user_id,omitempty"`

	Email        string `bson:"email,omitempty"`
	PasswordHash string `bson:"password_hash,omitempty"`

	Nickname        string `bson:"nickname,omitempty"`
	ProfileImageURL string `bson:"profile_image_url,omitempty"`

	// Verified gates protected actions. Platform accounts are verified at
	// creation; email accounts become verified once the mailed confirmation
	// link is followed.
	Verified bool `bson:"verified"`

	EmailVerificationCode string `bson:"email_verification_code,omitempty"`
	PasswordResetCode     string `bson:"password_reset_code,omitempty"`

	// PendingPassword is the staged hash of a requested replacement password.
	// It is set together with PasswordResetCode and both are cleared when the
	// reset is confirmed.
	PendingPassword string `bson:"pending_password,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// CodePurpose selects which single-use code a lookup or mutation targets.
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposePasswordReset     CodePurpose = "password_reset"
)
