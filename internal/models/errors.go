package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrInvalidConfig ErrorType = iota
	ErrProvider
	ErrDownload
	ErrSigning
	ErrIndexing
	ErrFileOp
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrProvider:
		return "Provider"
	case ErrDownload:
		return "Download"
	case ErrSigning:
		return "Signing"
	case ErrIndexing:
		return "Indexing"
	case ErrFileOp:
		return "FileOp"
	default:
		return "Unknown"
	}
}

// RepoError represents an error during repository synchronization. Subject
// names the project repo or package filename the error belongs to, when any.
type RepoError struct {
	Type    ErrorType
	Subject string
	Err     error
}

// Error implements the error interface
func (e *RepoError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *RepoError) Unwrap() error {
	return e.Err
}
