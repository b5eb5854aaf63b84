package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorgo-backend/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible
	// to the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an insert loses to the unique
	// constraint on users.email. The constraint is the sole arbiter for
	// concurrent registrations, so callers must treat this as "user
	// already exists" rather than a generic failure.
	ErrDuplicateEmail = errors.New("email already registered")
)

const uniqueViolation = "23505"

// Store provides access to users and tutoring sessions
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateUser inserts a new user and returns the stored row
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name string) (models.User, error) {
	user := models.User{Email: email, PasswordHash: passwordHash, Name: name}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, email, passwordHash, name)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail fetches a user by login handle
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password, name, created_at
		FROM users
		WHERE email = $1
	`, email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// GetUserByID fetches a user by id
func (s *Store) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password, name, created_at
		FROM users
		WHERE id = $1
	`, userID)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// CreateSession inserts a completed tutoring session. The response must
// already be resolved; no pending rows are ever written.
func (s *Store) CreateSession(ctx context.Context, userID int64, question, response string) (models.Session, error) {
	session := models.Session{UserID: userID, Question: question, Response: response}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tutoring_sessions (user_id, question, response)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, userID, question, response)
	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// ListSessions returns a page of the user's sessions, newest first
func (s *Store) ListSessions(ctx context.Context, userID int64, limit, offset int) ([]models.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, question, response, created_at
		FROM tutoring_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0, limit)
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(&session.ID, &session.UserID, &session.Question, &session.Response, &session.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// CountSessions returns the total number of sessions owned by the user
func (s *Store) CountSessions(ctx context.Context, userID int64) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(1) FROM tutoring_sessions WHERE user_id = $1
	`, userID).Scan(&total)
	return total, err
}

// GetSession fetches a single session scoped to its owner. A session that
// exists but belongs to another user is reported as ErrNotFound, so callers
// cannot distinguish foreign ids from absent ones.
func (s *Store) GetSession(ctx context.Context, userID, sessionID int64) (models.Session, error) {
	var session models.Session
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, question, response, created_at
		FROM tutoring_sessions
		WHERE id = $1 AND user_id = $2
	`, sessionID, userID)
	err := row.Scan(&session.ID, &session.UserID, &session.Question, &session.Response, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	return session, err
}
