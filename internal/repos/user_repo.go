package repos

import (
	"context"
	"time"

	"ecomapp/internal/domain"

	"github.com/google/uuid"
)

type UserRepo struct{ q Querier }

func NewUserRepo(q Querier) *UserRepo { return &UserRepo{q: q} }

const userColumns = `u.id, u.email, u.first_name, u.last_name, u.password_hash, u.role, u.is_active, u.created_at`

// Create inserts u, assigning its id and created_at. A taken email is a
// unique violation.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = now()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	_, err := exec(ctx, r.q, `
	  INSERT INTO users(id, email, first_name, last_name, password_hash, role, is_active, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Hash, u.Role, u.IsActive, u.CreatedAt)
	return err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := get(ctx, r.q, &u, `SELECT `+userColumns+` FROM users u WHERE LOWER(u.email) = LOWER(?)`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := get(ctx, r.q, &u, `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := selectAll(ctx, r.q, &out, `SELECT `+userColumns+` FROM users u ORDER BY u.created_at, u.id`)
	return out, err
}

func (r *UserRepo) Activate(ctx context.Context, userID string) error {
	return execOne(ctx, r.q, `UPDATE users SET is_active = ? WHERE id = ?`, true, userID)
}

func (r *UserRepo) SetRole(ctx context.Context, userID, role string) error {
	return execOne(ctx, r.q, `UPDATE users SET role = ? WHERE id = ?`, role, userID)
}

// ---------- Sessions ----------

func (r *UserRepo) CreateSession(ctx context.Context, sid, userID string) error {
	t := now()
	_, err := exec(ctx, r.q, `
	  INSERT INTO sessions(id, user_id, created_at, last_seen) VALUES(?, ?, ?, ?)
	`, sid, userID, t, t)
	return err
}

// SessionUser resolves a session token to its user and bumps last_seen.
func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	if err := get(ctx, r.q, &u, `
	  SELECT `+userColumns+`
	  FROM sessions s
	  JOIN users u ON u.id = s.user_id
	  WHERE s.id = ?
	`, sid); err != nil {
		return nil, err
	}
	if _, err := exec(ctx, r.q, `UPDATE sessions SET last_seen = ? WHERE id = ?`, now(), sid); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) DeleteSession(ctx context.Context, sid string) error {
	_, err := exec(ctx, r.q, `DELETE FROM sessions WHERE id = ?`, sid)
	return err
}

// ---------- Activation tokens ----------

func (r *UserRepo) CreateActivationToken(ctx context.Context, token, userID string, expires time.Time) error {
	_, err := exec(ctx, r.q, `
	  INSERT INTO activation_tokens(token, user_id, expires_at) VALUES(?, ?, ?)
	`, token, userID, expires.UTC())
	return err
}

// ConsumeActivationToken deletes the token if it belongs to userID and has
// not expired at t. Anything else is sql.ErrNoRows.
func (r *UserRepo) ConsumeActivationToken(ctx context.Context, token, userID string, t time.Time) error {
	var expires time.Time
	if err := get(ctx, r.q, &expires, `
	  SELECT expires_at FROM activation_tokens WHERE token = ? AND user_id = ?
	`, token, userID); err != nil {
		return err
	}
	if err := execOne(ctx, r.q, `DELETE FROM activation_tokens WHERE token = ?`, token); err != nil {
		return err
	}
	if !t.Before(expires) {
		return errExpired
	}
	return nil
}

// DeleteCascade removes the user along with sessions, activation tokens
// and wishlist entries. Orders stay with user_id cleared. Callers deal with
// open orders first.
func (r *UserRepo) DeleteCascade(ctx context.Context, userID string) error {
	for _, q := range []string{
		`DELETE FROM sessions WHERE user_id = ?`,
		`DELETE FROM activation_tokens WHERE user_id = ?`,
		`DELETE FROM wishlist WHERE user_id = ?`,
		`UPDATE orders SET user_id = NULL WHERE user_id = ?`,
		`UPDATE delivery_locations SET user_id = NULL WHERE user_id = ?`,
		`UPDATE products SET user_id = NULL WHERE user_id = ?`,
	} {
		if _, err := exec(ctx, r.q, q, userID); err != nil {
			return err
		}
	}
	return execOne(ctx, r.q, `DELETE FROM users WHERE id = ?`, userID)
}
