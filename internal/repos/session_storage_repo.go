package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrQuotaExceeded = errors.New("session storage quota exceeded")

// SessionStorageRepo is per-session key/value storage, the server-side equivalent of
// a browser's local storage.
type SessionStorageRepo struct {
	db       *sqlx.DB
	maxBytes int
}

// NewSessionStorageRepo caps each stored value at maxBytes (0 = unlimited).
func NewSessionStorageRepo(db *sqlx.DB, maxBytes int) *SessionStorageRepo {
	return &SessionStorageRepo{db: db, maxBytes: maxBytes}
}

// Scope binds the storage to one session id.
func (r *SessionStorageRepo) Scope(sessionID string) *SessionScope {
	return &SessionScope{repo: r, sessionID: sessionID}
}

// DeleteSession drops every key of a session.
func (r *SessionStorageRepo) DeleteSession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM session_storage WHERE session_id = ?`, sessionID)
	return err
}

type SessionScope struct {
	repo      *SessionStorageRepo
	sessionID string
}

func (s *SessionScope) Read(key string) (string, bool, error) {
	var v string
	err := s.repo.db.Get(&v, `SELECT value FROM session_storage WHERE session_id = ? AND key = ?`, s.sessionID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SessionScope) Write(key, value string) error {
	if s.repo.maxBytes > 0 && len(value) > s.repo.maxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, len(value), s.repo.maxBytes)
	}
	_, err := s.repo.db.Exec(`
		INSERT INTO session_storage(session_id, key, value, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, s.sessionID, key, value)
	return err
}

func (s *SessionScope) Delete(key string) error {
	_, err := s.repo.db.Exec(`DELETE FROM session_storage WHERE session_id = ? AND key = ?`, s.sessionID, key)
	return err
}
