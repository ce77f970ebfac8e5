package ast

import "errors"

// Sentinel errors for import extraction.
var (
	// ErrFileTooLarge is returned when the file exceeds the configured
	// maximum size.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrInvalidContent is returned when the file is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid file content")

	// ErrSyntax is returned when the file contains syntax errors. The
	// caller treats this as a soft failure: the file is excluded from
	// the index and the run continues.
	ErrSyntax = errors.New("source contains syntax errors")
)
