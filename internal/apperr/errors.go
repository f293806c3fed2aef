package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrDuplicateSection = errors.New("section heading appears more than once")
	ErrUnknownSection   = errors.New("unknown section")
	ErrRecordKind       = errors.New("record kind does not match section")
)
