package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ourxmas/payment-service/internal/models"
)

// SessionUpdate carries a partial user session update. Nil fields are left
// unchanged.
type SessionUpdate struct {
	PhoneNumber   *string
	SessionLink   *string
	SessionImages *[]string
	PaymentStatus *models.PaymentStatus
}

// CreateUserSession inserts a new user session
func (r *Repository) CreateUserSession(session *models.UserSession) error {
	query := `
		INSERT INTO user_sessions (id, phone_number, session_link, session_images, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query,
		session.ID, session.PhoneNumber, session.SessionLink,
		pq.Array(session.SessionImages), session.PaymentStatus).
		Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user session: %w", err)
	}
	return nil
}

// FindUserSessionByID retrieves a user session by identifier
func (r *Repository) FindUserSessionByID(id string) (*models.UserSession, error) {
	session := &models.UserSession{}
	query := `
		SELECT id, phone_number, session_link, session_images, payment_status, created_at, updated_at
		FROM user_sessions
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&session.ID, &session.PhoneNumber, &session.SessionLink,
		pq.Array(&session.SessionImages), &session.PaymentStatus,
		&session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user session: %w", err)
	}
	return session, nil
}

// FindUserSessionsByPhone retrieves all sessions for a phone number, newest first
func (r *Repository) FindUserSessionsByPhone(phone string) ([]models.UserSession, error) {
	query := `
		SELECT id, phone_number, session_link, session_images, payment_status, created_at, updated_at
		FROM user_sessions
		WHERE phone_number = $1
		ORDER BY created_at DESC`
	return r.queryUserSessions(query, phone)
}

// ListUserSessions returns sessions newest first, optionally filtered by
// payment status.
func (r *Repository) ListUserSessions(status models.PaymentStatus, limit, offset int) ([]models.UserSession, error) {
	var conditions []string
	var args []interface{}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	query := `
		SELECT id, phone_number, session_link, session_images, payment_status, created_at, updated_at
		FROM user_sessions` + where + fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.queryUserSessions(query, args...)
}

// CountUserSessions returns the number of sessions, optionally filtered by
// payment status.
func (r *Repository) CountUserSessions(status models.PaymentStatus) (int64, error) {
	var total int64
	var err error
	if status != "" {
		err = r.db.QueryRow("SELECT COUNT(*) FROM user_sessions WHERE payment_status = $1", status).Scan(&total)
	} else {
		err = r.db.QueryRow("SELECT COUNT(*) FROM user_sessions").Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count user sessions: %w", err)
	}
	return total, nil
}

// UpdateUserSession applies the provided fields and refreshes updated_at.
// Returns ErrNotFound when no session has the given id.
func (r *Repository) UpdateUserSession(id string, update SessionUpdate) (*models.UserSession, error) {
	var sets []string
	var args []interface{}

	if update.PhoneNumber != nil {
		args = append(args, *update.PhoneNumber)
		sets = append(sets, fmt.Sprintf("phone_number = $%d", len(args)))
	}
	if update.SessionLink != nil {
		args = append(args, *update.SessionLink)
		sets = append(sets, fmt.Sprintf("session_link = $%d", len(args)))
	}
	if update.SessionImages != nil {
		args = append(args, pq.Array(*update.SessionImages))
		sets = append(sets, fmt.Sprintf("session_images = $%d", len(args)))
	}
	if update.PaymentStatus != nil {
		args = append(args, *update.PaymentStatus)
		sets = append(sets, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.FindUserSessionByID(id)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE user_sessions
		SET %s
		WHERE id = $%d
		RETURNING id, phone_number, session_link, session_images, payment_status, created_at, updated_at`,
		strings.Join(sets, ", "), len(args))

	session := &models.UserSession{}
	err := r.db.QueryRow(query, args...).Scan(
		&session.ID, &session.PhoneNumber, &session.SessionLink,
		pq.Array(&session.SessionImages), &session.PaymentStatus,
		&session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user session: %w", err)
	}
	return session, nil
}

// DeleteUserSession removes a session, returning ErrNotFound when absent
func (r *Repository) DeleteUserSession(id string) error {
	result, err := r.db.Exec("DELETE FROM user_sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user session: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) queryUserSessions(query string, args ...interface{}) ([]models.UserSession, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.UserSession
	for rows.Next() {
		var session models.UserSession
		if err := rows.Scan(
			&session.ID, &session.PhoneNumber, &session.SessionLink,
			pq.Array(&session.SessionImages), &session.PaymentStatus,
			&session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user sessions: %w", err)
	}
	return sessions, nil
}
