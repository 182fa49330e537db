package jsondb

import (
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
)

const notificationsFile = "notifications.json"

type notificationRepository struct {
	mutex  sync.RWMutex
	dir    string
	notifs []notification.Notification
}

var _ notification.Repository = (*notificationRepository)(nil)

func newNotificationRepository(dir string, logger core.Logger) *notificationRepository {
	repo := &notificationRepository{dir: dir}
	load(dir, notificationsFile, &repo.notifs, logger)
	return repo
}

func (repo *notificationRepository) nextID() int {
	max := 0
	for _, n := range repo.notifs {
		if n.ID > max {
			max = n.ID
		}
	}
	return max + 1
}

func (repo *notificationRepository) CreateNotification(notif notification.Notification) (notification.Notification, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	notif.ID = repo.nextID()
	repo.notifs = append(repo.notifs, notif)
	if err := save(repo.dir, notificationsFile, repo.notifs); err != nil {
		return notification.Notification{}, err
	}
	return notif, nil
}

func (repo *notificationRepository) QueryUnreadByUser(userID int) ([]notification.Notification, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, n := range repo.notifs {
		if n.UserID == userID && !n.Read {
			notifs = append(notifs, n)
		}
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotification(id, userID int) (notification.Notification, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, n := range repo.notifs {
		if n.ID == id && n.UserID == userID {
			return n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) UpdateNotification(notif notification.Notification) (notification.Notification, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	for i, n := range repo.notifs {
		if n.ID == notif.ID {
			repo.notifs[i] = notif
			if err := save(repo.dir, notificationsFile, repo.notifs); err != nil {
				return notification.Notification{}, err
			}
			return notif, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}
