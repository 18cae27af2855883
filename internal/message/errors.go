package message

import "errors"

var (
	ErrUnknownStyle = errors.New("unknown message style")
	ErrEmptyCorpus  = errors.New("message corpus is empty")
)
