package main

import (
	"errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// addUser updates or creates a user account.
func (cli *commandLine) addUser(uname, first, last, role, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	role = core.CleanString(role, true /* lower */)
	if role != user.RoleTeacher && role != user.RoleStudent {
		return errors.New("role must be teacher or student")
	}

	usr, err := cli.usrSvc.GetByUsername(uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{Username: uname}
	}
	usr.FirstName = core.CleanString(first)
	usr.LastName = core.CleanString(last)
	usr.Role = role
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrSvc.UpdateOrCreate(usr)
	return err
}
