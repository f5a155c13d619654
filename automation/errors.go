package automation

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned for positional access past the end of a curve
	// and for keyframes placed before a curve's origin.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotMutable is returned when writing through an instanced curve or block.
	ErrNotMutable = errors.New("instance is not mutable")

	// ErrCycle is returned when an instance relation would point back at itself.
	ErrCycle = errors.New("instance cycle")

	// ErrHasInstances is returned when removing a block other blocks instance.
	ErrHasInstances = errors.New("block has instances")

	// ErrUnknownBlock is returned when a handle does not resolve in the store.
	ErrUnknownBlock = errors.New("unknown block")
)
