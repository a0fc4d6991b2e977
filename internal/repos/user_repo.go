package repos

import (
	"lootmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, name, password_hash, role, COALESCE(phone,'') AS phone, COALESCE(created_at,'') AS created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Create inserts u; u.Hash must already hold the bcrypt hash.
func (r *UserRepo) Create(u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	_, err := r.DB.Exec(`INSERT INTO users(id,email,name,password_hash,role,phone,created_at)
                         VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)`,
		u.ID, u.Email, u.Name, u.Hash, u.Role, u.Phone)
	return err
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id,u.email,u.name,u.password_hash,u.role,COALESCE(u.phone,'') AS phone,COALESCE(u.created_at,'') AS created_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

func (r *UserRepo) List(p Page) (Paged[domain.User], error) {
	var total int
	if err := r.DB.Get(&total, `SELECT COUNT(*) FROM users`); err != nil {
		return Paged[domain.User]{}, err
	}
	var out []domain.User
	if err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY LOWER(email) LIMIT ? OFFSET ?`,
		p.Size, p.Offset()); err != nil {
		return Paged[domain.User]{}, err
	}
	return newPaged(out, total, p), nil
}

func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (r *UserRepo) CountAdmins() (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE role=?`, domain.RoleAdmin)
	return n, err
}

func (r *UserRepo) SetRole(id, role string) error {
	res, err := r.DB.Exec(`UPDATE users SET role=?,updated_at=CURRENT_TIMESTAMP WHERE id=?`, role, id)
	return affected(res, err)
}

// DeleteUserCascade removes the user with their sessions and session storage.
// Orders are kept for audit; their user_id is nulled by the foreign key.
func (r *UserRepo) DeleteUserCascade(userID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var sessionIDs []string
	if err := tx.Select(&sessionIDs, `SELECT id FROM sessions WHERE user_id=?`, userID); err != nil {
		return err
	}

	if len(sessionIDs) > 0 {
		query, args, err := sqlx.In(`DELETE FROM session_storage WHERE session_id IN (?)`, sessionIDs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
		query, args, err = sqlx.In(`DELETE FROM sessions WHERE id IN (?)`, sessionIDs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}

	res, err := tx.Exec(`DELETE FROM users WHERE id=?`, userID)
	if err := affected(res, err); err != nil {
		return err
	}
	return tx.Commit()
}
