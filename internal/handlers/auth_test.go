package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tutorgo-backend/internal/config"
	"tutorgo-backend/internal/dto"
	"tutorgo-backend/internal/middleware"
	"tutorgo-backend/internal/models"
	"tutorgo-backend/internal/store"
)

type fakeUserStore struct {
	byEmail map[string]models.User
	nextID  int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]models.User{}, nextID: 1}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash, name string) (models.User, error) {
	if _, exists := f.byEmail[email]; exists {
		return models.User{}, store.ErrDuplicateEmail
	}
	user := models.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newAuthHandler(users UserStore) *AuthHandler {
	return NewAuthHandler(users, &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})
}

func TestRegisterValidation(t *testing.T) {
	h := newAuthHandler(newFakeUserStore())

	tests := []struct {
		name    string
		payload dto.RegisterRequest
		message string
	}{
		{"missing email", dto.RegisterRequest{Password: "long-enough", Name: "A"}, "email, password, and name are required"},
		{"missing password", dto.RegisterRequest{Email: "a@x.com", Name: "A"}, "email, password, and name are required"},
		{"missing name", dto.RegisterRequest{Email: "a@x.com", Password: "long-enough"}, "email, password, and name are required"},
		{"short password", dto.RegisterRequest{Email: "a@x.com", Password: "short", Name: "A"}, "password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, jsonRequest(t, http.MethodPost, "/auth/register", tt.payload))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tt.message, decodeError(t, rec).Message)
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	users := newFakeUserStore()
	h := newAuthHandler(users)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email: "a@x.com", Password: "correct horse", Name: "Alice",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	stored := users.byEmail["a@x.com"]
	require.NotEqual(t, "correct horse", stored.PasswordHash, "plaintext must never be stored")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))

	var resp dto.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "a@x.com", resp.User.Email)
	require.Equal(t, "Alice", resp.User.Name)
	require.NotContains(t, rec.Body.String(), stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	h := newAuthHandler(users)

	payload := dto.RegisterRequest{Email: "a@x.com", Password: "correct horse", Name: "Alice"}

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/auth/register", payload))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/auth/register", payload))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "user already exists", decodeError(t, rec).Message)
}

func seedUser(t *testing.T, users *fakeUserStore, email, password, name string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user, err := users.CreateUser(context.Background(), email, string(hash), name)
	require.NoError(t, err)
	return user
}

func TestLoginMissingFields(t *testing.T) {
	h := newAuthHandler(newFakeUserStore())

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "a@x.com"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "a@x.com", "right-password", "Alice")
	h := newAuthHandler(users)

	// Wrong password and unknown email must be indistinguishable
	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "wrong"}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := decodeError(t, rec).Message

	rec = httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "nobody@x.com", Password: "wrong"}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	unknownEmail := decodeError(t, rec).Message

	require.Equal(t, wrongPassword, unknownEmail)
}

func TestLoginIssuesBearerToken(t *testing.T) {
	users := newFakeUserStore()
	user := seedUser(t, users, "a@x.com", "right-password", "Alice")
	h := newAuthHandler(users)

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "right-password"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, user.Email, resp.User.Email)

	subject, err := middleware.ValidateToken(resp.AccessToken, h.jwt)
	require.NoError(t, err)
	require.Equal(t, user.ID, subject)
}
