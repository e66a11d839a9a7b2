package apperror

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrStepOutOfRange = errors.New("step is out of range")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrInvalidState   = errors.New("invalid game state")
)
