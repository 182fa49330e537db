package notification

import (
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(notif Notification) (Notification, error)
		QueryUnreadByUser(userID int) ([]Notification, error)
		// GetNotification looks a notification up by (id, userID); the owner
		// pair, not the id alone, identifies it.
		GetNotification(id, userID int) (Notification, error)
		UpdateNotification(notif Notification) (Notification, error)
	}

	ServiceInterface interface {
		Notify(userID int, message string) error
		Unread(userID int) ([]Notification, error)
		MarkRead(id, userID int) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// Notify appends an unread notification for the target user and persists it
// before returning; callers rely on it completing before the HTTP response.
func (svc *service) Notify(userID int, message string) error {
	_, err := svc.repo.CreateNotification(Notification{
		UserID:    userID,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Read:      false,
	})
	return errors.Wrap(err, "creating notification")
}

func (svc *service) Unread(userID int) ([]Notification, error) {
	return svc.repo.QueryUnreadByUser(userID)
}

// MarkRead flips the read flag of the user's own notification. Marking an
// already-read notification again is a no-op.
func (svc *service) MarkRead(id, userID int) error {
	notif, err := svc.repo.GetNotification(id, userID)
	if err != nil {
		return err
	}
	if notif.Read {
		return nil
	}
	notif.Read = true
	_, err = svc.repo.UpdateNotification(notif)
	return errors.Wrap(err, "updating notification")
}
