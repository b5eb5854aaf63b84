package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tutorgo-backend/internal/dto"
	"tutorgo-backend/internal/llm"
	"tutorgo-backend/internal/middleware"
	"tutorgo-backend/internal/models"
	"tutorgo-backend/internal/store"
	"tutorgo-backend/internal/utils"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// SessionStore is the slice of the store the session endpoints need
type SessionStore interface {
	CreateSession(ctx context.Context, userID int64, question, response string) (models.Session, error)
	ListSessions(ctx context.Context, userID int64, limit, offset int) ([]models.Session, error)
	CountSessions(ctx context.Context, userID int64) (int, error)
	GetSession(ctx context.Context, userID, sessionID int64) (models.Session, error)
}

// Generator produces a tutoring answer for a question
type Generator interface {
	Generate(ctx context.Context, question string) (string, error)
}

// SessionsHandler manages tutoring session endpoints
type SessionsHandler struct {
	sessions  SessionStore
	generator Generator
}

// NewSessionsHandler creates a new SessionsHandler
func NewSessionsHandler(sessions SessionStore, generator Generator) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, generator: generator}
}

// Sessions dispatches by HTTP method for /sessions
func (h *SessionsHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateSession(w, r)
	case http.MethodGet:
		// If path has an ID suffix, treat as detail
		if strings.HasPrefix(r.URL.Path, "/sessions/") && len(r.URL.Path) > len("/sessions/") {
			h.SessionDetail(w, r)
			return
		}
		h.ListSessions(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CreateSession handles POST /sessions
// @Summary Ask the tutor a question
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSessionRequest true "Question payload"
// @Success 200 {object} dto.CreateSessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions [post]
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.CreateSessionRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "question is required")
		return
	}

	// Generate first; nothing is persisted until a response exists
	answer, err := h.generator.Generate(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidCredentials) {
			log.Printf("create session: provider rejected credentials")
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "invalid provider credentials")
			return
		}
		log.Printf("create session: generate: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to generate response")
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), user.ID, req.Question, answer)
	if err != nil {
		log.Printf("create session: store: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to save session")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CreateSessionResponse{
		Message: "Session created successfully",
		Session: toSessionResponse(session),
	})
}

// ListSessions handles GET /sessions with pagination
// @Summary List the caller's tutoring sessions
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "items per page (max 100)"
// @Param offset query int false "offset"
// @Success 200 {object} dto.SessionListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions [get]
func (h *SessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	q := r.URL.Query()
	limit := parseListLimit(q.Get("limit"))
	offset := parseListOffset(q.Get("offset"))

	total, err := h.sessions.CountSessions(r.Context(), user.ID)
	if err != nil {
		log.Printf("list sessions: count: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to list sessions")
		return
	}

	sessions, err := h.sessions.ListSessions(r.Context(), user.ID, limit, offset)
	if err != nil {
		log.Printf("list sessions: query: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to list sessions")
		return
	}

	items := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionResponse(session))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.SessionListResponse{
		Sessions: items,
		Pagination: dto.Pagination{
			Limit:   limit,
			Offset:  offset,
			Total:   total,
			HasMore: offset+limit < total,
		},
	})
}

// SessionDetail handles GET /sessions/{session_id}
// @Summary Get one tutoring session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{session_id} [get]
func (h *SessionsHandler) SessionDetail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/sessions/")
	sessionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		// Malformed ids look the same as missing ones
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "session not found")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "session not found")
			return
		}
		log.Printf("session detail: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to load session")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toSessionResponse(session))
}

func parseListLimit(raw string) int {
	limit := defaultListLimit
	if v := strings.TrimSpace(raw); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > maxListLimit {
				n = maxListLimit
			}
			limit = n
		}
	}
	return limit
}

func parseListOffset(raw string) int {
	offset := 0
	if v := strings.TrimSpace(raw); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return offset
}

func toSessionResponse(session models.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:        session.ID,
		UserID:    session.UserID,
		Question:  session.Question,
		Response:  session.Response,
		CreatedAt: utils.FormatTimestamp(session.CreatedAt),
	}
}
