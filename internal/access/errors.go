package access

import "errors"

var ErrInvalidTier = errors.New("invalid tier")
