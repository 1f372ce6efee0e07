package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type mongoUserStore struct {
	collection *mongo.Collection
}

// NewMongoUserStore returns a UserStore backed by the "users" collection.
// Emails are stored lower-cased; the unique email index makes duplicate
// registration a single-document race the database resolves.
func NewMongoUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{collection: db.Collection("users")}
}

func (s *mongoUserStore) Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	now := time.Now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	res, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	user.ID = id
	return id, nil
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (s *mongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (s *mongoUserStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	return s.updateOne(ctx, id, bson.M{"verified": true})
}

func (s *mongoUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return s.updateOne(ctx, id, bson.M{"passwordHash": passwordHash})
}

func (s *mongoUserStore) AttachGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error {
	return s.updateOne(ctx, id, bson.M{"googleId": googleID, "verified": true})
}

func (s *mongoUserStore) updateOne(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := s.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

type mongoTokenStore struct {
	collection *mongo.Collection
}

// NewMongoTokenStore returns a TokenStore backed by the "verification_tokens"
// collection.
func NewMongoTokenStore(db *mongo.Database) TokenStore {
	return &mongoTokenStore{collection: db.Collection("verification_tokens")}
}

func (s *mongoTokenStore) Replace(ctx context.Context, token *models.VerificationToken) error {
	filter := bson.M{"userId": token.UserID, "purpose": token.Purpose}
	if _, err := s.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete prior tokens: %w", err)
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	if _, err := s.collection.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (s *mongoTokenStore) Find(ctx context.Context, userID primitive.ObjectID, purpose string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	filter := bson.M{"userId": userID, "purpose": purpose}
	if err := s.collection.FindOne(ctx, filter).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return &token, nil
}

func (s *mongoTokenStore) Delete(ctx context.Context, userID primitive.ObjectID, purpose string) error {
	filter := bson.M{"userId": userID, "purpose": purpose}
	if _, err := s.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
