package gitrepo

import "errors"

var (
	ErrGitNotFound    = errors.New("git executable not found on PATH")
	ErrNotARepository = errors.New("not inside a git work tree")
)
