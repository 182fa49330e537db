package postgres

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(notif notification.Notification) (notification.Notification, error) {
	q := `INSERT INTO notification (user_id, message, timestamp, read) VALUES ($1, $2, $3, $4) RETURNING id`
	err := repo.db.Get(&notif.ID, q, notif.UserID, notif.Message, notif.Timestamp, notif.Read)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryUnreadByUser(userID int) ([]notification.Notification, error) {
	notifs := make([]notification.Notification, 0)
	q := `SELECT * FROM notification WHERE user_id = $1 AND NOT read ORDER BY id`
	if err := repo.db.Select(&notifs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying unread notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotification(id, userID int) (notification.Notification, error) {
	var notif notification.Notification
	q := `SELECT * FROM notification WHERE id = $1 AND user_id = $2`
	if err := repo.db.Get(&notif, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) UpdateNotification(notif notification.Notification) (notification.Notification, error) {
	q := `UPDATE notification SET message = :message, read = :read WHERE id = :id`
	res, err := repo.db.NamedExec(q, notif)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return notif, nil
}
