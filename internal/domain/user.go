package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	Name      string `db:"name"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
