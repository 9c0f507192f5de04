package obsrv

import oerrors "github.com/obsrv-dev/obsrv/internal/errors"

// Error is the structured error returned by every obsrv operation.
// Use errors.Is with the sentinels below to match on the kind.
type Error = oerrors.Error

// Construction errors. New returns no store when any of these occur.
var (
	ErrMissingData      = oerrors.New("O001")
	ErrInvalidDataShape = oerrors.New("O002")
	ErrReservedName     = oerrors.New("O003")
)

// Runtime errors. The store stays usable after any of these.
var (
	ErrUnknownField    = oerrors.New("O101")
	ErrUnknownComputed = oerrors.New("O102")
	ErrUnknownAction   = oerrors.New("O103")
)
