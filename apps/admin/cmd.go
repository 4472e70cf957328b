package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateFunc      = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	profileSvc profile.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status...) on the database")
	fmt.Println("  createfaculty -email EMAIL -name NAME - create a faculty account")
	fmt.Println("  resetpassword -email EMAIL - reset a profile's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createFacultyCmd := flag.NewFlagSet("createfaculty", flag.ContinueOnError)
	createFacultyEmail := createFacultyCmd.String("email", "", "The faculty's email. The password will be prompted next.")
	createFacultyName := createFacultyCmd.String("name", "", "The faculty's full name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The profile's email. The password will be prompted next.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return migrateFunc(cli.db, args[2], args[3:]...)

	case "createfaculty":
		if err := createFacultyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createFacultyEmail == "" || *createFacultyName == "" {
			createFacultyCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createFacultyCmd.Usage()
			return errHelp
		}
		return cli.createFaculty(ctx, *createFacultyEmail, *createFacultyName, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// describe renders validation errors with their translated messages.
func describe(err error, translator ut.Translator) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		msgs := make([]string, 0, len(vErrs))
		for _, vErr := range vErrs {
			msgs = append(msgs, vErr.Field()+": "+vErr.Translate(translator))
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
