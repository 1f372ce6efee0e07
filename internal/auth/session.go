package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionClaims is what a valid session token proves.
type SessionClaims struct {
	UserID primitive.ObjectID
	Email  string
}

// IssueSession signs an HS256 session token carrying the user id and email
// with the configured expiry.
func IssueSession(userID primitive.ObjectID, email, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"email":  email,
		"exp":    time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSession validates signature and expiry and extracts the claims.
// Any failure maps to ErrUnauthorized; callers get no detail beyond that.
func ParseSession(raw, secret string) (*SessionClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return nil, ErrUnauthorized
	}
	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return nil, ErrUnauthorized
	}

	email, _ := claims["email"].(string)
	return &SessionClaims{UserID: userID, Email: email}, nil
}
