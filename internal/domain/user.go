package domain

import "time"

// User is the repository DTO for an account. The core never stores the
// plaintext password; hashing is a collaborator (internal/auth).
type User struct {
	ID                  int
	Username            string
	PasswordHash        string
	Nickname            string
	Email               string
	Role                Role
	Profile             string
	TerminalProfileName string
	Encoding            Encoding
	Language            Language
	AutoPaging          bool
	CreatedAt           time.Time
	LastLogin           time.Time
	IsActive            bool
}

// HasLastLogin reports whether the user has logged in before.
func (u *User) HasLastLogin() bool {
	return !u.LastLogin.IsZero()
}

// UserUpdate is a plain optional-field record for partial updates; the
// repository applies whichever fields are non-nil.
type UserUpdate struct {
	Nickname     *string
	Email        *string
	Role         *Role
	Profile      *string
	Encoding     *Encoding
	Language     *Language
	IsActive     *bool
	LastLogin    *time.Time
	PasswordHash *string
}

// IsEmpty reports whether the update carries no changes.
func (u UserUpdate) IsEmpty() bool {
	return u.Nickname == nil && u.Email == nil && u.Role == nil &&
		u.Profile == nil && u.Encoding == nil && u.Language == nil &&
		u.IsActive == nil && u.LastLogin == nil && u.PasswordHash == nil
}

// UserDetail is an admin read-model that augments a User with
// aggregate activity counts.
type UserDetail struct {
	User              User
	PostCount         int
	FileCount         int
	MailSentCount     int
	MailReceivedCount int
}
