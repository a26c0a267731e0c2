package main

import (
	"context"
	"time"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/user"
)

// createAdmin provisions an admin account. Fails if the username or email is
// already taken.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      user.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return err
	}
	logger.Printf("admin %q created\n", uname)
	return nil
}
