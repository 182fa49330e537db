package main

import (
	"github.com/trezcool/shule/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrSvc.GetByUsername(uname)
	if err != nil {
		return err
	}
	cp := user.ChangePassword{NewPassword: pwd}
	if err = cp.Validate(usr, cli.validate); err != nil {
		return err
	}
	_, err = cli.usrSvc.SetPassword(usr, pwd)
	return err
}
