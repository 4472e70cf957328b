package main

import (
	"context"
	"fmt"

	"github.com/campusbuddy/helpdesk/core/profile"
)

// createFaculty creates a faculty profile. Existing profiles are never modified.
func (cli *commandLine) createFaculty(ctx context.Context, email, name, pwd string) error {
	p, created, err := cli.profileSvc.EnsureFaculty(ctx, email, name, pwd)
	if err != nil {
		return err
	}
	if !created {
		return profile.ErrEmailExists
	}
	fmt.Printf("faculty %q created\n", p.Email)
	return nil
}
