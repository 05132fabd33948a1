package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole distinguishes cafe owners from platform administrators.
type UserRole string

const (
	RoleCafeOwner UserRole = "CAFE_OWNER"
	RoleAdmin     UserRole = "ADMIN"
)

// User represents an authenticated account (cafe owner or admin).
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Argon2id, never expose
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true for platform administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
