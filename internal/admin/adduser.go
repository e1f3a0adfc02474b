// Package admin holds the operator tooling that runs next to the portal
// server, such as seeding accounts from the terminal.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/flagx"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/services"
)

var (
	ErrEmptyUsername    = errors.New("username must not be empty")
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Registrar creates a user together with its seeded loan data.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

// UserOptions are the profile fields that can be given on the command line.
// Anything left empty is prompted for, except the optional profile fields.
type UserOptions struct {
	Username string
	FullName string
	Email    string
	Mobile   string
}

// ParseUserFlags reads -username, -fullname, -email and -mobile from args.
// Other flags are ignored so the same argument list can feed the server
// config.
func ParseUserFlags(args []string) (UserOptions, error) {
	var o UserOptions

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.Username, "username", "", "login name")
	fs.StringVar(&o.FullName, "fullname", "", "full name")
	fs.StringVar(&o.Email, "email", "", "email address")
	fs.StringVar(&o.Mobile, "mobile", "", "mobile number")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-username", "-fullname", "-email", "-mobile"})); err != nil {
		return UserOptions{}, err
	}
	return o, nil
}

// AddUser prompts for whatever opts lacks, asks for the password twice and
// registers the account. The created user is printed to w as JSON without
// its credential.
func AddUser(ctx context.Context, reader *bufio.Reader, w io.Writer, reg Registrar, opts UserOptions) (*models.User, error) {
	var err error

	if opts.Username == "" {
		opts.Username, err = GetSimpleText(reader, "Username", w)
		if err != nil {
			return nil, err
		}
	}
	if opts.Username == "" {
		return nil, ErrEmptyUsername
	}

	password, err := GetPassword("Enter password", w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	confirm, err := GetPassword("Repeat password", w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return nil, ErrPasswordMismatch
	}

	u, err := reg.Register(ctx, services.RegisterInput{
		Username: opts.Username,
		Password: string(password),
		FullName: opts.FullName,
		Email:    opts.Email,
		Mobile:   opts.Mobile,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("user %q already exists", opts.Username)
		}
		return nil, fmt.Errorf("add user: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if _, err := fmt.Fprintln(w, "User added successfully:"); err != nil {
		return u, err
	}
	if err := enc.Encode(u.Public()); err != nil {
		return u, err
	}
	return u, nil
}
