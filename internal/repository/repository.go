package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTokenNotFound  = errors.New("verification token not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore defines the account persistence operations the auth service
// needs. Consumers define this interface, not the MongoDB implementation.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	AttachGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error
}

// TokenStore persists single-use verification tokens, at most one live token
// per (userId, purpose).
type TokenStore interface {
	// Replace deletes any existing token for (userID, purpose) and inserts
	// the new one.
	Replace(ctx context.Context, token *models.VerificationToken) error
	Find(ctx context.Context, userID primitive.ObjectID, purpose string) (*models.VerificationToken, error)
	Delete(ctx context.Context, userID primitive.ObjectID, purpose string) error
}
