package postgres

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(username string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE username = $1)`
	args := []interface{}{username}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		q, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM "user" WHERE username = ? AND id NOT IN (?))`, username, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		q = repo.db.Rebind(q)
	}

	var exists bool
	if err := repo.db.Get(&exists, q, args...); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	q := `INSERT INTO "user" (first_name, last_name, username, role, password_hash, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := repo.db.Get(&usr.ID, q, usr.FirstName, usr.LastName, usr.Username, usr.Role, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	users := make([]user.User, 0)
	if err := repo.db.Select(&users, `SELECT * FROM "user" ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) QueryUsersByRole(role string) ([]user.User, error) {
	users := make([]user.User, 0)
	if err := repo.db.Select(&users, `SELECT * FROM "user" WHERE role = $1 ORDER BY id`, role); err != nil {
		return nil, errors.Wrap(err, "querying users by role")
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var usr user.User
	if err := repo.db.Get(&usr, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by id")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	var usr user.User
	if err := repo.db.Get(&usr, `SELECT * FROM "user" WHERE username = $1`, username); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by username")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	q := `UPDATE "user"
	      SET first_name = :first_name, last_name = :last_name, username = :username,
	          role = :role, password_hash = :password_hash, updated_at = :updated_at
	      WHERE id = :id`
	res, err := repo.db.NamedExec(q, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
