package viewshed

import (
	"errors"
	"fmt"
)

// Sentinel errors for the viewshed package.
var (
	// ErrObserverOutOfRange is returned when the observer coordinates fall
	// outside [0,W) x [0,H).
	ErrObserverOutOfRange = errors.New("viewshed: observer coordinates out of range")

	// ErrMissingAuxiliaryGrid is returned when XDraw is selected without a
	// LOS grid.
	ErrMissingAuxiliaryGrid = errors.New("viewshed: XDraw requires a non-nil LOS grid")

	// ErrUnknownAlgorithm is returned when the algorithm tag is not one of
	// the four known values.
	ErrUnknownAlgorithm = errors.New("viewshed: unknown algorithm tag")
)

// ShapeMismatchError is returned when V (and, for XDraw, LOS) does not
// have the same dimensions as Z.
type ShapeMismatchError struct {
	Grid          string
	Width, Height int
	WantW, WantH  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("viewshed: %s has shape %dx%d, want %dx%d matching Z",
		e.Grid, e.Width, e.Height, e.WantW, e.WantH)
}
