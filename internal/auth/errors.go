package auth

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrDuplicateAccount  = errors.New("email already registered")
	ErrAccountNotFound   = errors.New("no account found for the supplied details")
	ErrTokenNotFound     = errors.New("account record doesn't exist or has been verified already")
	ErrTokenExpired      = errors.New("code has expired, please request a new one")
	ErrInvalidCredential = errors.New("invalid credentials supplied")
	ErrUnauthorized      = errors.New("invalid or expired session token")
	ErrInvalidAssertion  = errors.New("google credential could not be verified")
)

// ValidationError reports the first failing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnverifiedError carries the user id so the client can route straight to the
// OTP screen.
type UnverifiedError struct {
	UserID primitive.ObjectID
}

func (e *UnverifiedError) Error() string {
	return "account has not been verified yet, check your inbox"
}

// DeliveryError reports a failed outbound email after the account/token
// state was already persisted. The account is NOT rolled back; the client
// should offer a resend.
type DeliveryError struct {
	UserID primitive.ObjectID
	Err    error
}

func (e *DeliveryError) Error() string {
	return "verification email could not be sent, please request a new code"
}

func (e *DeliveryError) Unwrap() error { return e.Err }
