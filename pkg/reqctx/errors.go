package reqctx

import (
	"errors"

	"github.com/Alijeyrad/wscontext/pkg/epr"
)

var (
	// ErrInvalidState is returned by every accessor operation invoked while
	// no request is being served by the calling unit of work.
	ErrInvalidState = errors.New("reqctx: no request is being served")

	// ErrUnsupportedReferenceKind is returned by the typed self-reference
	// lookup when the hosting runtime cannot produce the requested kind.
	ErrUnsupportedReferenceKind = epr.ErrUnsupportedKind

	// ErrUnknownProperty is returned when changing the scope of a property
	// that does not exist.
	ErrUnknownProperty = errors.New("reqctx: unknown message property")
)
