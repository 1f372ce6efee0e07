package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/auth"
	"backend/internal/models"
)

const requestTimeout = 5 * time.Second

type SignupRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"`
}

type VerifyOTPRequest struct {
	UserID string `json:"userId" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

type ResendOTPRequest struct {
	UserID string `json:"userId" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type GoogleAuthRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type ResetRequestRequest struct {
	Email       string `json:"email" binding:"required"`
	RedirectURL string `json:"redirectUrl" binding:"required"`
}

type ResetPasswordRequest struct {
	UserID      string `json:"userId" binding:"required"`
	ResetString string `json:"resetString" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// userPayload is the account shape returned to clients.
func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":       user.ID.Hex(),
		"name":     user.Name,
		"email":    user.Email,
		"verified": user.Verified,
	}
}

func sessionPayload(session *auth.Session) gin.H {
	return gin.H{
		"user":  userPayload(session.User),
		"token": session.Token,
	}
}

func Signup(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SIGNUP")

		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := svc.Signup(ctx, req.Name, req.Email, req.Password, req.DateOfBirth)
		if err != nil {
			respondAuthError(c, "SIGNUP", err)
			return
		}

		respond(c, http.StatusCreated, statusPending, "verification OTP sent to your email", gin.H{
			"userId": user.ID.Hex(),
			"email":  user.Email,
		})
	}
}

func VerifyOTP(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "VERIFY_OTP")

		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			respond(c, http.StatusBadRequest, statusFailed, "userId is invalid", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		session, err := svc.VerifyOTP(ctx, userID, req.OTP)
		if err != nil {
			respondAuthError(c, "VERIFY_OTP", err)
			return
		}

		respondSuccess(c, "email verified successfully", sessionPayload(session))
	}
}

func ResendOTP(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "RESEND_OTP")

		var req ResendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			respond(c, http.StatusBadRequest, statusFailed, "userId is invalid", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.ResendOTP(ctx, userID, req.Email); err != nil {
			respondAuthError(c, "RESEND_OTP", err)
			return
		}

		respond(c, http.StatusOK, statusPending, "a new verification OTP is on its way", nil)
	}
}

func Signin(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SIGNIN")

		var req SigninRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		session, err := svc.Signin(ctx, req.Email, req.Password)
		if err != nil {
			respondAuthError(c, "SIGNIN", err)
			return
		}

		respondSuccess(c, "signin successful", sessionPayload(session))
	}
}

func GoogleAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "GOOGLE_AUTH")

		var req GoogleAuthRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		session, err := svc.GoogleAuth(ctx, req.Credential)
		if err != nil {
			respondAuthError(c, "GOOGLE_AUTH", err)
			return
		}

		respondSuccess(c, "google signin successful", sessionPayload(session))
	}
}

// Me returns the account behind the session established by the middleware.
func Me(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "ME")

		userID, ok := c.MustGet("userId").(primitive.ObjectID)
		if !ok {
			respond(c, http.StatusUnauthorized, statusFailed, auth.ErrUnauthorized.Error(), nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := svc.Me(ctx, userID)
		if err != nil {
			respondAuthError(c, "ME", err)
			return
		}

		respondSuccess(c, "", gin.H{"user": userPayload(user)})
	}
}

func RequestPasswordReset(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "RESET_REQUEST")

		var req ResetRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.RequestPasswordReset(ctx, req.Email, req.RedirectURL); err != nil {
			respondAuthError(c, "RESET_REQUEST", err)
			return
		}

		// Same response whether or not the account exists.
		respond(c, http.StatusOK, statusPending, "if that account exists, a reset link has been emailed", nil)
	}
}

func ResetPassword(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "RESET_PASSWORD")

		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			respond(c, http.StatusBadRequest, statusFailed, "userId is invalid", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.ResetPassword(ctx, userID, req.ResetString, req.NewPassword); err != nil {
			respondAuthError(c, "RESET_PASSWORD", err)
			return
		}

		respondSuccess(c, "password has been reset", nil)
	}
}

// Logout acknowledges the client discarding its token. Sessions are
// self-contained JWTs, so there is no server-side state to revoke.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondSuccess(c, "logged out", nil)
	}
}
