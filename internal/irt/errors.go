package irt

import "errors"

var (
	// ErrInsufficientData is returned when an estimate or calibration is
	// requested without any observations.
	ErrInsufficientData = errors.New("irt: insufficient data")

	// ErrNonConvergence marks a result that hit the iteration cap. The result
	// itself is still usable; callers decide whether to trust it.
	ErrNonConvergence = errors.New("irt: iteration cap reached without convergence")
)
