package vision

import "errors"

// Failure taxonomy surfaced to users. Only ErrOverloaded is retried.
var (
	ErrMissingCredential = errors.New("vision: missing API credential")
	ErrInvalidResponse   = errors.New("vision: invalid response payload")
	ErrQuotaExceeded     = errors.New("vision: quota exceeded")
	ErrOverloaded        = errors.New("vision: service temporarily overloaded")
)
