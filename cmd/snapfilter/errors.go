package main

import "errors"

// Sentinel errors for command operations
var (
	ErrUnknownFormat     = errors.New("unknown output format")
	ErrInvalidIndent     = errors.New("indent must be between 0 and 8")
	ErrCheckFailed       = errors.New("filter expression is invalid")
	ErrNotFormatted      = errors.New("filter expression is not formatted")
	ErrInvalidRecord     = errors.New("record fields must be key=value")
	ErrScriptRequired    = errors.New("--script is required")
	ErrInputFileNotExist = errors.New("input file does not exist")
)
