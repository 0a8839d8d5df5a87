package tax

import "errors"

var (
	ErrConflict          = errors.New("rule document already registered for jurisdiction and effective start")
	ErrNoApplicableRule  = errors.New("no rule document in force")
	ErrAmbiguousRule     = errors.New("multiple rule documents in force")
	ErrMalformedRule     = errors.New("malformed rule document")
	ErrRegistryFrozen    = errors.New("registry is frozen")
	ErrRegistryNotFrozen = errors.New("registry is not frozen")
)
