package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/helpdesk/core/profile"
	inmemdb "github.com/campusbuddy/helpdesk/storage/database/inmem"
	testutil "github.com/campusbuddy/helpdesk/tests"
)

func setup(t *testing.T) (*commandLine, profile.Repository, ut.Translator) {
	t.Helper()
	validate, translator := testutil.NewValidator()
	repo := inmemdb.NewProfileRepository(inmemdb.NewDB())
	return &commandLine{profileSvc: profile.NewService(repo, validate)}, repo, translator
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

type extra struct {
	pwd string
}

func mockPassword(tt cliTest) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if extra, ok := tt.extra.(extra); ok {
			return []byte(extra.pwd), nil
		}
		return nil, nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	var ran []string
	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_faqs", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down-to", "status", "create"}, ran)
}

func Test_commandLine_createFaculty(t *testing.T) {
	cli, repo, translator := setup(t)
	testutil.CreateProfile(t, repo, "Taken", "taken@college.edu", "Sup3rSecret!", profile.TypeStudent, true)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"createfaculty"}, wantErr: errHelp},
		{name: "no name", args: []string{"createfaculty", "-email", "ada@college.edu"}, extra: extra{pwd: "Sup3rSecret!"}, wantErr: errHelp},
		{name: "no password", args: []string{"createfaculty", "-email", "ada@college.edu", "-name", "Ada"}, wantErr: errHelp},
		{name: "email taken", args: []string{"createfaculty", "-email", "taken@college.edu", "-name", "Ada"}, extra: extra{pwd: "Sup3rSecret!"}, wantErr: profile.ErrEmailExists},
		{name: "created", args: []string{"createfaculty", "-email", "Ada@College.edu", "-name", "Ada Lovelace"}, extra: extra{pwd: "Sup3rSecret!"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	t.Run("weak password", func(t *testing.T) {
		mockPassword(cliTest{extra: extra{pwd: "12345678"}})
		err := cli.run([]string{"admin", "createfaculty", "-email", "bob@college.edu", "-name", "Bob"})
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		assert.Equal(t, "password: password cannot be entirely numeric", describe(err, translator))
	})

	p, err := repo.GetProfile(context.Background(), profile.GetFilter{Email: "ada@college.edu"})
	require.NoError(t, err)
	assert.Equal(t, profile.TypeFaculty, p.UserType)
	assert.Equal(t, "Ada Lovelace", p.FullName)
	assert.True(t, p.IsActive)
	assert.NoError(t, p.CheckPassword("Sup3rSecret!"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, repo, _ := setup(t)
	p := testutil.CreateProfile(t, repo, "Hero Student", "hero@college.edu", "Sup3rSecret!", profile.TypeStudent, true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "hero@college.edu"}, wantErr: errHelp},
		{name: "profile not found", args: []string{"resetpassword", "-email", "lol@college.edu"}, extra: extra{pwd: "N3wSecret!"}, wantErr: profile.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "HERO@college.edu"}, extra: extra{pwd: "N3wSecret!"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	refreshed, err := repo.GetProfile(context.Background(), profile.GetFilter{ID: p.ID})
	require.NoError(t, err)
	assert.False(t, bytes.Equal(refreshed.PasswordHash, p.PasswordHash), "failed to update new password")
	assert.NoError(t, refreshed.CheckPassword("N3wSecret!"))
}
