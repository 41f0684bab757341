package errors

import (
	stderrors "errors"
	"fmt"

	"gomonte/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of any
// AppError already in the chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an AppError sits anywhere in the chain
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the nearest AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeInvalidDistribution = "INVALID_DISTRIBUTION"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeTableUnreadable     = "TABLE_UNREADABLE"
	CodeScenarioNotFound    = "SCENARIO_NOT_FOUND"
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ScenarioNotFound(name string) *AppError {
	return New(CodeScenarioNotFound, fmt.Sprintf("scenario %q not found", name))
}

func TableUnreadable(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeTableUnreadable,
		Message: fmt.Sprintf("cannot read outcome table %s", path),
		Cause:   cause,
	}
}

// FromDomain converts a domain error into a coded AppError so transport
// layers can map failures to responses without inspecting sentinels.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	var nested *AppError
	if stderrors.As(err, &nested) {
		return &AppError{Code: nested.Code, Message: err.Error(), Cause: err}
	}

	code := CodeInternalError
	switch {
	case core.IsInvalidDistribution(err):
		code = CodeInvalidDistribution
	case stderrors.Is(err, core.ErrNoZeroVarianceProposal):
		code = CodeInvalidInput
	case core.IsTableError(err):
		code = CodeTableUnreadable
	case stderrors.Is(err, core.ErrScenarioNotFound):
		code = CodeScenarioNotFound
	}

	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}
