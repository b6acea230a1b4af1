package babel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSymbol means some content contained a character outside the alphabet.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrOutOfBounds means a coordinate or a length fell outside its permitted range.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrMalformedIdentifier means an identifier could not be parsed.
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// ErrInvalidRoomSymbol means a room contained a character that is not a digit in the room base.
	// It wraps ErrMalformedIdentifier.
	ErrInvalidRoomSymbol = errors.WithMessage(ErrMalformedIdentifier, "invalid room symbol")

	// ErrConstantsUnavailable means the permutation constants could not be loaded or failed verification.
	ErrConstantsUnavailable = errors.New("constants unavailable")

	// ErrNoModularInverse means a candidate multiplier was not invertible modulo N.
	// It only arises while deriving constants.
	ErrNoModularInverse = errors.New("no modular inverse")
)

// FieldError identifies the part of an input that was rejected.
// Its Err is one of the sentinel errors in this package.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	v := e.Value
	if len(v) > 40 {
		v = v[:16] + "..." + v[len(v)-16:]
	}
	return fmt.Sprintf("%s %q: %s", e.Field, v, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(field, value string, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}
