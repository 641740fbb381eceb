package mines

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParams = errors.New("invalid game params")
	ErrOutOfBounds   = errors.New("position out of bounds")
)

type PositionError struct {
	Row, Col int
}

// [PositionError] implements [error]
func (e PositionError) Error() string {
	return fmt.Sprintf("%s: %d:%d", ErrOutOfBounds, e.Row, e.Col)
}

func (e PositionError) Unwrap() error {
	return ErrOutOfBounds
}
