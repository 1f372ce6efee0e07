package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token purposes. At most one live token exists per (userId, purpose).
const (
	TokenPurposeOTP   = "otp"
	TokenPurposeReset = "reset"
)

// VerificationToken stores the bcrypt hash of a short-lived secret (a 4-digit
// OTP or an opaque password-reset string). Tokens are single-use: they are
// deleted on consumption and on expiry detection; a Mongo TTL index on
// expiresAt collects the ones nobody ever reads.
type VerificationToken struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Purpose    string             `bson:"purpose" json:"purpose"`
	SecretHash string             `bson:"secretHash" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt  time.Time          `bson:"expiresAt" json:"expiresAt"`
}
