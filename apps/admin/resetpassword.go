package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	if err := cli.profileSvc.ResetPassword(ctx, email, pwd); err != nil {
		return err
	}
	fmt.Printf("password of %q updated\n", email)
	return nil
}
