package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const authSessionTTL = 24 * time.Hour

// CreateAuthSession opens a login session for a teacher or admin and returns
// its cookie token.
func (s *Store) CreateAuthSession(userID int64) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	sess := model.AuthSession{ID: token, UserID: userID, CreatedAt: time.Now().UTC()}
	sess.ExpiresAt = sess.CreatedAt.Add(authSessionTTL)

	if _, err := s.db.Exec(
		`INSERT INTO auth_sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// GetAuthSession looks up a cookie token. Unknown tokens yield nil; an
// expired one is removed on sight and also yields nil.
func (s *Store) GetAuthSession(token string) (*model.AuthSession, error) {
	var sess model.AuthSession
	err := s.db.QueryRow(
		`SELECT id, user_id, created_at, expires_at FROM auth_sessions WHERE id = ?`, token,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if !sess.ExpiresAt.After(time.Now()) {
		_ = s.DeleteAuthSession(token)
		return nil, nil
	}
	return &sess, nil
}

// DeleteAuthSession ends a login; unknown tokens are ignored.
func (s *Store) DeleteAuthSession(token string) error {
	_, err := s.db.Exec(`DELETE FROM auth_sessions WHERE id = ?`, token)
	return err
}

// CleanupExpiredSessions removes sessions that expired before now and
// reports how many were removed. The scheduler calls it periodically.
func (s *Store) CleanupExpiredSessions(now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM auth_sessions WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// newSessionToken returns 32 random bytes, hex encoded.
func newSessionToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
