package user

import "context"

type Directory interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}
