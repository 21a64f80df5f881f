// Package admin creates back-office accounts from the command line.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password must not be empty")
)

// Registrar creates accounts. services.IdentityService satisfies it.
type Registrar interface {
	Register(ctx context.Context, name, email, password, company, phone, role string) (*models.Account, error)
}

// Creator prompts for whatever the flags did not supply and registers an
// admin account.
type Creator struct {
	registrar Registrar
	reader    *bufio.Reader
	out       io.Writer
}

func NewCreator(r Registrar, in io.Reader, out io.Writer) *Creator {
	return &Creator{registrar: r, reader: bufio.NewReader(in), out: out}
}

// CreateAdmin registers an account with the admin role. An existing email
// is reported as common.ErrConflict and left untouched.
func (c *Creator) CreateAdmin(ctx context.Context, email, name string) (*models.Account, error) {
	var err error
	if email == "" {
		if email, err = GetSimpleText(c.reader, "Admin email", c.out); err != nil {
			return nil, err
		}
	}
	if name == "" {
		if name, err = GetSimpleText(c.reader, "Admin name", c.out); err != nil {
			return nil, err
		}
	}

	password, err := c.readNewPassword()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	acc, err := c.registrar.Register(ctx, name, email, string(password), "", "", common.RoleAdmin)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("account %s: %w", email, err)
		}
		return nil, err
	}
	return acc, nil
}

func (c *Creator) readNewPassword() ([]byte, error) {
	pw, err := GetPassword(c.out, "Password")
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, ErrEmptyPassword
	}

	confirm, err := GetPassword(c.out, "Repeat password")
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		common.WipeByteArray(pw)
		return nil, ErrPasswordMismatch
	}
	return pw, nil
}
