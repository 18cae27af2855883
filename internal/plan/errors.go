package plan

import "errors"

var (
	ErrEmptyHorizon    = errors.New("horizon is empty")
	ErrBadMaxPerDay    = errors.New("max commits per day must be >= 1")
	ErrHorizonOrder    = errors.New("horizon days must be strictly ascending")
	ErrUnknownStrategy = errors.New("unknown distribution strategy")

	ErrEmptyPlan     = errors.New("plan has no days")
	ErrZeroDate      = errors.New("day has no date")
	ErrNegativeCount = errors.New("day has a negative commit count")
	ErrOutOfOrder    = errors.New("plan days are not in chronological order")
)
