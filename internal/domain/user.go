package domain

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID    string `db:"user_id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Role  Role   `db:"role"`
	Token string `db:"token"`
}

func (u *User) Is(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
