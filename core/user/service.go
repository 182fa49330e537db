package user

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("Пользователь с таким логином уже существует")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		QueryUsersByRole(role string) ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByUsername(username string) (User, error)
		UpdateUser(user User) (User, error)
	}

	ServiceInterface interface {
		CheckUsernameUniqueness(uname string, exclUsers ...User) error
		Create(nu NewUser) (User, error)
		QueryAll() ([]User, error)
		QueryStudents() ([]User, error)
		GetByID(id int) (User, error)
		GetByUsername(uname string) (User, error)
		SetPassword(usr User, pwd string) (User, error)
		UpdateOrCreate(usr User) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) CheckUsernameUniqueness(uname string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, exclUsers...); err != nil {
		if err == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(usr)
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

// QueryStudents returns all users with the student role; used for the
// student option lists on the teacher forms.
func (svc *service) QueryStudents() ([]User, error) {
	return svc.repo.QueryUsersByRole(RoleStudent)
}

func (svc *service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *service) SetPassword(usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

// UpdateOrCreate persists usr by ID when it resolves; creates it otherwise.
// Used by the admin CLI.
func (svc *service) UpdateOrCreate(usr User) (User, error) {
	if _, err := svc.repo.GetUserByID(usr.ID); err != nil {
		if err != ErrNotFound {
			return User{}, err
		}
		usr.CreatedAt = time.Now().UTC()
		usr.UpdatedAt = usr.CreatedAt
		return svc.repo.CreateUser(usr)
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}
