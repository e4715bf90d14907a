package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is owned by the account service; this service only reads it.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
