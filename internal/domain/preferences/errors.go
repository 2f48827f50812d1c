package preferences

import "errors"

var (
	ErrPreferenceNotFound = errors.New("preference not found")
	ErrUnknownCurrency    = errors.New("unknown currency code")
)
