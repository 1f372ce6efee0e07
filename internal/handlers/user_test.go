package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"
)

const testSecret = "handler-test-secret"

type memUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (m *memUserStore) Insert(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
	}
	id := primitive.NewObjectID()
	user.ID = id
	copied := *user
	m.users[id] = &copied
	return id, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserStore) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	if user, ok := m.users[id]; ok {
		user.Verified = true
		return nil
	}
	return repository.ErrUserNotFound
}

func (m *memUserStore) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	if user, ok := m.users[id]; ok {
		user.PasswordHash = hash
		return nil
	}
	return repository.ErrUserNotFound
}

func (m *memUserStore) AttachGoogleID(_ context.Context, id primitive.ObjectID, googleID string) error {
	if user, ok := m.users[id]; ok {
		user.GoogleID = googleID
		user.Verified = true
		return nil
	}
	return repository.ErrUserNotFound
}

type memTokenKey struct {
	userID  primitive.ObjectID
	purpose string
}

type memTokenStore struct {
	tokens map[memTokenKey]*models.VerificationToken
}

func (m *memTokenStore) Replace(_ context.Context, token *models.VerificationToken) error {
	copied := *token
	m.tokens[memTokenKey{token.UserID, token.Purpose}] = &copied
	return nil
}

func (m *memTokenStore) Find(_ context.Context, userID primitive.ObjectID, purpose string) (*models.VerificationToken, error) {
	if token, ok := m.tokens[memTokenKey{userID, purpose}]; ok {
		copied := *token
		return &copied, nil
	}
	return nil, repository.ErrTokenNotFound
}

func (m *memTokenStore) Delete(_ context.Context, userID primitive.ObjectID, purpose string) error {
	delete(m.tokens, memTokenKey{userID, purpose})
	return nil
}

type captureMailer struct {
	lastOTP string
}

func (m *captureMailer) SendOTP(_, otp string) error { m.lastOTP = otp; return nil }

func (m *captureMailer) SendPasswordReset(_, _ string) error { return nil }

func newTestRouter() (*gin.Engine, *captureMailer) {
	gin.SetMode(gin.TestMode)

	mail := &captureMailer{}
	svc := auth.NewService(
		&memUserStore{users: make(map[primitive.ObjectID]*models.User)},
		&memTokenStore{tokens: make(map[memTokenKey]*models.VerificationToken)},
		mail,
		auth.NewDisabledVerifier(),
		auth.Config{
			JWTSecret:  testSecret,
			SessionTTL: time.Hour,
			OTPTTL:     time.Hour,
			ResetTTL:   time.Hour,
		},
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	user := r.Group("/user")
	{
		user.POST("/signup", Signup(svc))
		user.POST("/verifyOTP", VerifyOTP(svc))
		user.POST("/resendOTPVerificationCode", ResendOTP(svc))
		user.POST("/signin", Signin(svc))
		user.POST("/google-auth", GoogleAuth(svc))
		user.POST("/requestPasswordReset", RequestPasswordReset(svc))
		user.POST("/resetPassword", ResetPassword(svc))

		authed := user.Group("")
		authed.Use(middleware.UserAuth(testSecret))
		{
			authed.GET("/me", Me(svc))
			authed.POST("/logout", Logout())
		}
	}
	return r, mail
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, bearer string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "body: %s", w.Body.String())
	return w, parsed
}

func TestSignupEnvelope(t *testing.T) {
	r, _ := newTestRouter()

	w, body := doJSON(t, r, http.MethodPost, "/user/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"secret-pass","dateOfBirth":"1990-04-01"}`, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PENDING", body["status"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["userId"])
	assert.Equal(t, "jane@example.com", data["email"])
}

func TestSignupShortPasswordNamesField(t *testing.T) {
	r, _ := newTestRouter()

	w, body := doJSON(t, r, http.MethodPost, "/user/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"seven77","dateOfBirth":"1990-04-01"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FAILED", body["status"])
	assert.Contains(t, body["message"], "password")
}

func TestSignupMissingFieldBindingError(t *testing.T) {
	r, _ := newTestRouter()

	w, body := doJSON(t, r, http.MethodPost, "/user/signup",
		`{"name":"Jane Doe","password":"secret-pass","dateOfBirth":"1990-04-01"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FAILED", body["status"])
	assert.Contains(t, body["message"], "email")
}

func TestUnverifiedSigninCarriesUserID(t *testing.T) {
	r, _ := newTestRouter()

	_, signupBody := doJSON(t, r, http.MethodPost, "/user/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"secret-pass","dateOfBirth":"1990-04-01"}`, "")
	userID := signupBody["data"].(map[string]interface{})["userId"].(string)

	w, body := doJSON(t, r, http.MethodPost, "/user/signin",
		`{"email":"jane@example.com","password":"secret-pass"}`, "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FAILED", body["status"])
	assert.Equal(t, true, body["requiresVerification"])
	assert.Equal(t, userID, body["userId"])
}

func TestVerifyThenMe(t *testing.T) {
	r, mail := newTestRouter()

	_, signupBody := doJSON(t, r, http.MethodPost, "/user/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"secret-pass","dateOfBirth":"1990-04-01"}`, "")
	userID := signupBody["data"].(map[string]interface{})["userId"].(string)

	w, verifyBody := doJSON(t, r, http.MethodPost, "/user/verifyOTP",
		`{"userId":"`+userID+`","otp":"`+mail.lastOTP+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, "verify response: %v", verifyBody)
	assert.Equal(t, "SUCCESS", verifyBody["status"])

	token := verifyBody["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)

	w, meBody := doJSON(t, r, http.MethodGet, "/user/me", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
	user := meBody["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "jane@example.com", user["email"])
	assert.Equal(t, true, user["verified"])
}

func TestMeWithoutTokenIsUnauthorized(t *testing.T) {
	r, _ := newTestRouter()

	w, body := doJSON(t, r, http.MethodGet, "/user/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "FAILED", body["status"])
}

func TestWrongOTPResponse(t *testing.T) {
	r, mail := newTestRouter()

	_, signupBody := doJSON(t, r, http.MethodPost, "/user/signup",
		`{"name":"Jane Doe","email":"jane@example.com","password":"secret-pass","dateOfBirth":"1990-04-01"}`, "")
	userID := signupBody["data"].(map[string]interface{})["userId"].(string)

	wrong := "0000"
	if mail.lastOTP == wrong {
		wrong = "0001"
	}
	w, body := doJSON(t, r, http.MethodPost, "/user/verifyOTP",
		`{"userId":"`+userID+`","otp":"`+wrong+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "FAILED", body["status"])
}

func TestResetRequestAlwaysGeneric(t *testing.T) {
	r, _ := newTestRouter()

	w, body := doJSON(t, r, http.MethodPost, "/user/requestPasswordReset",
		`{"email":"nobody@example.com","redirectUrl":"https://shop.example/reset"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", body["status"])
	assert.Contains(t, body["message"], "if that account exists")
}

func TestGoogleAuthDisabledVerifier(t *testing.T) {
	r, _ := newTestRouter()

	w, body := doJSON(t, r, http.MethodPost, "/user/google-auth", `{"credential":"raw-token"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "FAILED", body["status"])
}

func TestRequestIDEchoedOnResponse(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/user/logout", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}
