package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a storefront account. Exactly one of PasswordHash or
// GoogleID is set at creation; a Google sign-in may later attach GoogleID to
// an existing password account (credential merge, logged by the auth service).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	GoogleID     string             `bson:"googleId,omitempty" json:"-"`
	DateOfBirth  string             `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Verified     bool               `bson:"verified" json:"verified"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
