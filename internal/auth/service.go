package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/mailer"
	"backend/internal/models"
	"backend/internal/repository"
)

// Session bundles the authenticated user with a signed session token.
type Session struct {
	User  *models.User
	Token string
}

// Service orchestrates signup, OTP verification, signin, Google sign-in and
// password reset over the user/token stores.
type Service struct {
	users    repository.UserStore
	tokens   repository.TokenStore
	mail     mailer.Mailer
	google   IdentityVerifier
	secret   string
	session  time.Duration
	otpTTL   time.Duration
	resetTTL time.Duration

	now func() time.Time
}

// Config carries the signing secret and expiry knobs for a Service.
type Config struct {
	JWTSecret  string
	SessionTTL time.Duration
	OTPTTL     time.Duration
	ResetTTL   time.Duration
}

func NewService(users repository.UserStore, tokens repository.TokenStore, mail mailer.Mailer, google IdentityVerifier, cfg Config) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		mail:     mail,
		google:   google,
		secret:   cfg.JWTSecret,
		session:  cfg.SessionTTL,
		otpTTL:   cfg.OTPTTL,
		resetTTL: cfg.ResetTTL,
		now:      time.Now,
	}
}

// Signup validates the input, creates an unverified account and dispatches a
// 4-digit OTP to the supplied email. A DeliveryError still means the account
// exists; the client should route to resend, not re-signup.
func (s *Service) Signup(ctx context.Context, name, email, password, dateOfBirth string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateSignup(name, email, password, dateOfBirth); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		DateOfBirth:  dateOfBirth,
		Verified:     false,
	}
	id, err := s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	if err := s.issueOTP(ctx, id, email); err != nil {
		log.Println("[AUTH] [ERROR] signup OTP dispatch failed:", err)
		return user, &DeliveryError{UserID: id, Err: err}
	}

	log.Println("[AUTH] [INFO] signup pending verification:", email)
	return user, nil
}

// VerifyOTP consumes the live OTP for the user. Expiry deletes the token, so
// a retry with the same code fails with ErrTokenNotFound.
func (s *Service) VerifyOTP(ctx context.Context, userID primitive.ObjectID, otp string) (*Session, error) {
	token, err := s.tokens.Find(ctx, userID, models.TokenPurposeOTP)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if s.now().After(token.ExpiresAt) {
		_ = s.tokens.Delete(ctx, userID, models.TokenPurposeOTP)
		return nil, ErrTokenExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(token.SecretHash), []byte(otp)); err != nil {
		return nil, ErrInvalidCredential
	}

	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.tokens.Delete(ctx, userID, models.TokenPurposeOTP); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.Println("[AUTH] [INFO] account verified:", user.Email)
	return s.newSession(user)
}

// ResendOTP discards any live OTP and issues a fresh one.
func (s *Service) ResendOTP(ctx context.Context, userID primitive.ObjectID, email string) error {
	email = normalizeEmail(email)
	if err := s.tokens.Delete(ctx, userID, models.TokenPurposeOTP); err != nil {
		return err
	}
	if err := s.issueOTP(ctx, userID, email); err != nil {
		return &DeliveryError{UserID: userID, Err: err}
	}
	log.Println("[AUTH] [INFO] OTP re-issued:", email)
	return nil
}

// Signin authenticates an email/password pair. Unverified accounts get an
// UnverifiedError carrying the user id so the client can route to the OTP
// screen.
func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if !user.Verified {
		return nil, &UnverifiedError{UserID: user.ID}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}

	log.Println("[AUTH] [INFO] signin succeeded:", user.Email)
	return s.newSession(user)
}

// GoogleAuth verifies a Google ID token. An existing account with the same
// email gets the Google subject attached and is marked verified - a
// deliberate credential merge, logged for audit. Otherwise a new verified
// account is created.
func (s *Service) GoogleAuth(ctx context.Context, rawIDToken string) (*Session, error) {
	identity, err := s.google.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, ErrInvalidAssertion
	}
	if !identity.EmailVerified {
		return nil, ErrInvalidAssertion
	}

	email := normalizeEmail(identity.Email)
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			log.Println("[AUTH] [INFO] attaching google identity to existing account:", email)
		}
		if err := s.users.AttachGoogleID(ctx, user.ID, identity.Subject); err != nil {
			return nil, err
		}
		user.GoogleID = identity.Subject
		user.Verified = true
	case errors.Is(err, repository.ErrUserNotFound):
		user = &models.User{
			Name:     identity.Name,
			Email:    email,
			GoogleID: identity.Subject,
			Verified: true,
		}
		if _, err := s.users.Insert(ctx, user); err != nil {
			return nil, err
		}
		log.Println("[AUTH] [INFO] account created via google:", email)
	default:
		return nil, err
	}

	return s.newSession(user)
}

// RequestPasswordReset issues a reset secret and emails a link built from
// redirectURL. Missing and unverified accounts return nil all the same; the
// caller shows one generic message either way so responses don't reveal
// whether an account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Println("[AUTH] [INFO] reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.Verified {
		log.Println("[AUTH] [INFO] reset requested for unverified account:", user.Email)
		return nil
	}

	secret, err := generateResetSecret()
	if err != nil {
		return err
	}
	if err := s.storeToken(ctx, user.ID, models.TokenPurposeReset, secret, s.resetTTL); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/%s/%s", strings.TrimRight(redirectURL, "/"), user.ID.Hex(), secret)
	if err := s.mail.SendPasswordReset(user.Email, resetURL); err != nil {
		return &DeliveryError{UserID: user.ID, Err: err}
	}

	log.Println("[AUTH] [INFO] reset email dispatched:", user.Email)
	return nil
}

// ResetPassword consumes the live reset token and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, userID primitive.ObjectID, resetSecret, newPassword string) error {
	token, err := s.tokens.Find(ctx, userID, models.TokenPurposeReset)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if s.now().After(token.ExpiresAt) {
		_ = s.tokens.Delete(ctx, userID, models.TokenPurposeReset)
		return ErrTokenExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(token.SecretHash), []byte(resetSecret)) != nil {
		return ErrInvalidCredential
	}

	if len(newPassword) < 8 {
		return &ValidationError{Field: "newPassword", Message: "password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, userID, models.TokenPurposeReset); err != nil {
		return err
	}

	log.Println("[AUTH] [INFO] password reset completed")
	return nil
}

// Me loads the account behind a session claim.
func (s *Service) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, err := IssueSession(user.ID, user.Email, s.secret, s.session)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func (s *Service) issueOTP(ctx context.Context, userID primitive.ObjectID, email string) error {
	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.storeToken(ctx, userID, models.TokenPurposeOTP, otp, s.otpTTL); err != nil {
		return err
	}
	return s.mail.SendOTP(email, otp)
}

func (s *Service) storeToken(ctx context.Context, userID primitive.ObjectID, purpose, secret string, ttl time.Duration) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash %s secret: %w", purpose, err)
	}

	now := s.now()
	return s.tokens.Replace(ctx, &models.VerificationToken{
		UserID:     userID,
		Purpose:    purpose,
		SecretHash: string(hash),
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	})
}

// generateOTP draws a uniform 4-digit code, left-padded with zeros.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func generateResetSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
