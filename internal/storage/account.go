package storage

import "time"

const (
	RoleTeam       = "team"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Plant        string `json:"plant"`
	Machine      string `json:"machine"`
}

// IsAdmin reports whether the account may see rows created by other
// operators. Super admins additionally may edit, delete and restore them.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

func (a Account) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// Session is one server-side login record referenced by the signed cookie
// token.
type Session struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
