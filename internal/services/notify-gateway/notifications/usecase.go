package notifications

import (
	"context"

	"github.com/NordCoder/Classbell/internal/domain/notification"
)

type Usecase struct {
	store notification.Store
}

func New(store notification.Store) *Usecase {
	return &Usecase{store: store}
}

// List returns the requester's notifications, newest first.
func (u *Usecase) List(ctx context.Context, requesterID int64) ([]*notification.Notification, error) {
	list, err := u.store.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*notification.Notification{}
	}
	return list, nil
}

// Delete removes one of the requester's notifications. Records owned by other
// users are reported as notification.ErrNotFound.
func (u *Usecase) Delete(ctx context.Context, requesterID, id int64) error {
	if id <= 0 {
		return notification.ErrNotFound
	}
	return u.store.DeleteByID(ctx, requesterID, id)
}
