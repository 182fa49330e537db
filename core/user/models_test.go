package user

import (
	"testing"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	validate := validator.New()
	_ru := ru.New()
	uni := ut.New(_ru, _ru)
	translator, _ := uni.GetTranslator("ru")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestUser_passwordHashing(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("s3cret"))
	assert.NotContains(t, string(usr.PasswordHash), "s3cret", "password must never be stored in clear")

	assert.NoError(t, usr.CheckPassword("s3cret"))
	assert.Error(t, usr.CheckPassword("S3cret"))
	assert.Error(t, usr.CheckPassword(""))
}

func TestUser_FullName(t *testing.T) {
	usr := User{FirstName: "Иван", LastName: "Петров", Username: "ivan"}
	assert.Equal(t, "Иван Петров", usr.FullName())

	usr = User{Username: "ivan"}
	assert.Equal(t, "ivan", usr.FullName())

	usr = User{FirstName: "Иван", Username: "ivan"}
	assert.Equal(t, "ivan", usr.FullName(), "both names are needed")
}

func TestNewUser_Validate(t *testing.T) {
	validate := newTestValidator(t)

	tests := []struct {
		name    string
		form    NewUser
		wantErr bool
	}{
		{name: "ok", form: NewUser{Username: "ivan", Password: "p1", Role: RoleStudent}},
		{name: "short password allowed", form: NewUser{Username: "ivan2", Password: "p", Role: RoleStudent}},
		{name: "missing username", form: NewUser{Password: "pwd", Role: RoleStudent}, wantErr: true},
		{name: "missing password", form: NewUser{Username: "ivan", Role: RoleStudent}, wantErr: true},
		{name: "missing role", form: NewUser{Username: "ivan", Password: "pwd"}, wantErr: true},
		{name: "unknown role", form: NewUser{Username: "ivan", Password: "pwd", Role: "admin"}, wantErr: true},
		{name: "username with spaces", form: NewUser{Username: "iv an", Password: "pwd", Role: RoleStudent}, wantErr: true},
		{name: "username with underscore ok", form: NewUser{Username: "iv_an", Password: "pwd", Role: RoleTeacher}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate(validate, noopUserSvc{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewUser_Validate_normalizesUsername(t *testing.T) {
	validate := newTestValidator(t)

	form := NewUser{Username: "  IVAN ", Password: "pwd", Role: RoleStudent}
	require.NoError(t, form.Validate(validate, noopUserSvc{}))
	assert.Equal(t, "ivan", form.Username)
}

func TestChangePassword_Validate(t *testing.T) {
	validate := newTestValidator(t)
	usr := User{FirstName: "Иван", LastName: "Петров", Username: "ivanpetrov"}

	cp := ChangePassword{NewPassword: "совершенно другой"}
	assert.NoError(t, cp.Validate(usr, validate))

	cp = ChangePassword{}
	assert.Error(t, cp.Validate(usr, validate), "password is required")

	cp = ChangePassword{NewPassword: "ivanpetrov1"}
	err := cp.Validate(usr, validate)
	require.Error(t, err, "password too similar to the username")
	verr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "newPassword", verr.Fields[0].Field)
	assert.Equal(t, "пароль слишком похож на ваши данные", verr.Fields[0].Error)
}

// noopUserSvc satisfies ServiceInterface for form validation tests; every
// username passes the uniqueness check.
type noopUserSvc struct{}

func (noopUserSvc) CheckUsernameUniqueness(string, ...User) error { return nil }
func (noopUserSvc) Create(NewUser) (User, error)                  { return User{}, nil }
func (noopUserSvc) QueryAll() ([]User, error)                     { return nil, nil }
func (noopUserSvc) QueryStudents() ([]User, error)                { return nil, nil }
func (noopUserSvc) GetByID(int) (User, error)                     { return User{}, ErrNotFound }
func (noopUserSvc) GetByUsername(string) (User, error)            { return User{}, ErrNotFound }
func (noopUserSvc) SetPassword(usr User, _ string) (User, error)  { return usr, nil }
func (noopUserSvc) UpdateOrCreate(usr User) (User, error)         { return usr, nil }
