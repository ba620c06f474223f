package pasetotoken

import (
	"errors"
	"fmt"
)

// ErrNotAccessToken is wrapped by VerifyAccess when a valid refresh token
// is presented as a caller credential.
var ErrNotAccessToken = errors.New("not an access token")

type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

// ErrInvalidToken wraps every verification failure.
type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }
