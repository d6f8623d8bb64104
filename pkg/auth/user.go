package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticatable principal. Users are global records; which
// tenants a user can act in is decided by role assignments, not by the
// user row itself.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
