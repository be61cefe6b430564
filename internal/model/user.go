package model

import "github.com/erazemk/mechatrack/internal/errs"

// User is an account that can sign in. The JSON form is the public view.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    Timestamp `json:"-"`
}

// Signup holds the fields required to register an account.
type Signup struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// MsgAllFieldsRequired is returned when any signup field is missing.
const MsgAllFieldsRequired = "All fields required"

// Validate checks that every signup field is present.
func (s Signup) Validate() error {
	if err := Check(s); err != nil {
		return errs.Validation(MsgAllFieldsRequired)
	}
	return nil
}
