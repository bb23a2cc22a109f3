package syncmanager

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// ErrType classifies the errors produced by this package.
type ErrType uint32

const (
	// IllegalConstruction is returned when a Manager that was not obtained
	// through Shared is used.
	IllegalConstruction ErrType = iota
	// InvalidConfiguration is returned when a setter is given a value that
	// the sync client cannot use.
	InvalidConfiguration
)

// Err is the error type of this package.
type Err struct {
	errType ErrType
	field   string
	msg     string
}

func newErr(errType ErrType, field string, msg string) Err {
	return Err{
		errType: errType,
		field:   field,
		msg:     msg,
	}
}

// Type returns the class of the error.
func (e Err) Type() ErrType {
	return e.errType
}

// Field returns the name of the setting concerned by the error, if any.
func (e Err) Field() string {
	return e.field
}

// Error implements the error interface.
func (e Err) Error() string {
	m := ""
	switch e.errType {
	case IllegalConstruction:
		m = "Illegal Construction"
	case InvalidConfiguration:
		m = "Invalid Configuration"
	}

	if e.field == "" {
		return fmt.Sprintf("%s, %s", m, e.msg)
	}
	return fmt.Sprintf("%s, %s, %s", m, e.field, e.msg)
}

// IsErr checks that err, or one of the errors aggregated in it, is an Err of
// type t.
func IsErr(err error, t ErrType) bool {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			if IsErr(e, t) {
				return true
			}
		}
		return false
	}

	var e Err
	return errors.As(err, &e) && e.errType == t
}
