package models

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrConflict     = errors.New("record already exists")
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("action is forbidden")
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidPhoneNumber = &InputError{Field: "phoneNumber", Message: "Invalid phone number"}
)

// InputError describes a rejected field. It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func isDuplicateKeyErr(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
