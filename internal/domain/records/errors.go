package records

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrAmountRequired      = errors.New("amount is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidDate         = errors.New("date must be a valid YYYY-MM-DD value")
)
