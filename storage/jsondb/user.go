package jsondb

import (
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

const usersFile = "users.json"

type userRepository struct {
	mutex sync.RWMutex
	dir   string
	users []user.User
}

var _ user.Repository = (*userRepository)(nil)

func newUserRepository(dir string, logger core.Logger) *userRepository {
	repo := &userRepository{dir: dir}
	load(dir, usersFile, &repo.users, logger)
	return repo
}

// nextID returns max(id)+1 so that ids keep increasing and are never reused
// after a delete.
func (repo *userRepository) nextID() int {
	max := 0
	for _, u := range repo.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func (repo *userRepository) CheckUsernameUniqueness(username string, excludedUsers ...user.User) error {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, u := range repo.users {
		if u.Username != username {
			continue
		}
		excluded := false
		for _, ex := range excludedUsers {
			if ex.ID == u.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return user.ErrUsernameExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	usr.ID = repo.nextID()
	repo.users = append(repo.users, usr)
	if err := save(repo.dir, usersFile, repo.users); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	users := make([]user.User, len(repo.users))
	copy(users, repo.users)
	return users, nil
}

func (repo *userRepository) QueryUsersByRole(role string) ([]user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	users := make([]user.User, 0)
	for _, u := range repo.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, u := range repo.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, u := range repo.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	for i, u := range repo.users {
		if u.ID == usr.ID {
			repo.users[i] = usr
			if err := save(repo.dir, usersFile, repo.users); err != nil {
				return user.User{}, err
			}
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
