package dto

// CreateSessionRequest represents the payload to ask the tutor a question
type CreateSessionRequest struct {
	Question string `json:"question"`
}

// SessionResponse represents a tutoring session in responses
type SessionResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Question  string `json:"question"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// CreateSessionResponse envelope
type CreateSessionResponse struct {
	Message string          `json:"message"`
	Session SessionResponse `json:"session"`
}

// Pagination info for session listings
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// SessionListResponse envelope
type SessionListResponse struct {
	Sessions   []SessionResponse `json:"sessions"`
	Pagination Pagination        `json:"pagination"`
}
