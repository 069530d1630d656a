package goRecover

import (
	"context"
	"time"
)

// Identity is an account as stored by the user directory.
type Identity struct {
	ID             int64
	LoginName      string
	Email          string
	OrganizationID int64
	PasswordHash   string
	// Federated accounts authenticate against an external directory (LDAP)
	// and cannot have their password reset here.
	Federated bool
	RealName  string
}

// View projects the fields that are safe to return to a caller.
func (i *Identity) View() *UserView {
	if i == nil {
		return nil
	}
	return &UserView{ID: i.ID, LoginName: i.LoginName, Email: i.Email}
}

// UserView is the account projection carried by a Result.
type UserView struct {
	ID        int64  `json:"id"`
	LoginName string `json:"loginName"`
	Email     string `json:"email"`
}

// Directory is the user store the Engine reads accounts from and commits
// new credentials to.
//
// FindByEmail and UpdateCredentials return ErrIdentityNotFound (possibly
// wrapped) when no account matches. UpdateCredentials must update the
// account hash and append the password history in one transaction.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	UpdateCredentials(ctx context.Context, id int64, passwordHash string) (*Identity, error)
	RecentPasswordHashes(ctx context.Context, id int64, limit int) ([]string, error)
}

// Result is the outcome of an Engine operation. Code is empty on success.
// A Result is returned by value and never modified afterwards.
type Result struct {
	Success           bool
	Code              ErrorCode
	Message           string
	User              *UserView
	CooldownRemaining time.Duration
	MinLength         int
	MaxLength         int
}

// Failed reports whether the result carries an error code.
func (r Result) Failed() bool {
	return r.Code != ""
}
