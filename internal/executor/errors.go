package executor

import "errors"

var (
	ErrDirtyWorkTree = errors.New("working tree has uncommitted changes")
	ErrEmptyPlan     = errors.New("nothing to execute: plan is empty")
)
