package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tutorgo-backend/internal/config"
	"tutorgo-backend/internal/dto"
	"tutorgo-backend/internal/middleware"
	"tutorgo-backend/internal/models"
	"tutorgo-backend/internal/store"
	"tutorgo-backend/internal/utils"
)

// UserStore is the slice of the store the auth endpoints need
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users UserStore
	jwt   *config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users UserStore, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwtCfg}
}

// Register handles user registration
// @Summary Register a new user
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 200 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "email, password, and name are required")
		return
	}
	if len(req.Password) < 8 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "password must be at least 8 characters")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to hash password")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, string(hashedPassword), req.Name)
	if err != nil {
		// The unique constraint on users.email arbitrates concurrent
		// registrations; losers surface as a duplicate, not a 500.
		if errors.Is(err, store.ErrDuplicateEmail) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "user already exists")
			return
		}
		log.Printf("register: create user: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to create user")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.RegisterResponse{
		Message: "User registered successfully",
		User:    toUserResponse(user),
	})
}

// Login handles user login
// @Summary Authenticate with email and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("login: lookup user: %v", err)
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to look up user")
			return
		}
		// Unknown email and wrong password produce the same reply
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, h.jwt)
	if err != nil {
		log.Printf("login: sign token: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to generate token")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(user),
	})
}

func toUserResponse(user models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: utils.FormatTimestamp(user.CreatedAt),
	}
}
