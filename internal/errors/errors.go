package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured evaluation error
type AppError struct {
	Code    string
	Message string
	Field   string // Missing or malformed field, when relevant
	Status  int    // Upstream HTTP status for oracle errors
	Body    string // Upstream response body for oracle errors
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

// Wrap wraps an error with additional context, keeping the code of an inner AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Field:   appErr.Field,
			Status:  appErr.Status,
			Body:    appErr.Body,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// As finds the first AppError in the chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetField returns the field attached to an AppError, if any
func GetField(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Field
	}
	return ""
}

// IsRetryable reports whether the error is a transient oracle failure
func IsRetryable(err error) bool {
	return GetCode(err) == CodeOracleRateLimited
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeOracleRateLimited = "ORACLE_RATE_LIMITED"
	CodeOracleProtocol    = "ORACLE_PROTOCOL"
	CodeEmptyReply        = "EMPTY_REPLY"
	CodeMalformedJSON     = "MALFORMED_JSON"
	CodeMissingField      = "MISSING_FIELD"
	CodeInvalidShape      = "INVALID_SHAPE"
	CodeRubricViolation   = "RUBRIC_VIOLATION"
	CodeCallerContract    = "CALLER_CONTRACT"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Error classes
const (
	ClassConfiguration   = "configuration"
	ClassTransientOracle = "transient_oracle"
	ClassOracleProtocol  = "oracle_protocol"
	ClassNormalization   = "normalization"
	ClassCallerContract  = "caller_contract"
	ClassInternal        = "internal"
)

// ClassOf maps an error code to its class in the evaluation error taxonomy
func ClassOf(code string) string {
	switch code {
	case CodeConfigInvalid:
		return ClassConfiguration
	case CodeOracleRateLimited:
		return ClassTransientOracle
	case CodeOracleProtocol:
		return ClassOracleProtocol
	case CodeEmptyReply, CodeMalformedJSON, CodeMissingField, CodeInvalidShape, CodeRubricViolation:
		return ClassNormalization
	case CodeCallerContract, CodeInvalidInput:
		return ClassCallerContract
	default:
		return ClassInternal
	}
}

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func OracleRateLimited(status int, body string) *AppError {
	return &AppError{
		Code:    CodeOracleRateLimited,
		Message: fmt.Sprintf("oracle rate limited (status %d)", status),
		Status:  status,
		Body:    body,
	}
}

func OracleProtocol(status int, body string, cause error) *AppError {
	msg := fmt.Sprintf("oracle request failed with status %d: %s", status, body)
	if status == 0 {
		msg = "oracle request failed"
	}
	return &AppError{
		Code:    CodeOracleProtocol,
		Message: msg,
		Status:  status,
		Body:    body,
		Cause:   cause,
	}
}

func EmptyReply() *AppError {
	return New(CodeEmptyReply, "oracle reply has no content")
}

func MalformedJSON(cause error) *AppError {
	return &AppError{
		Code:    CodeMalformedJSON,
		Message: "oracle reply is not valid JSON",
		Cause:   cause,
	}
}

func MissingField(field string) *AppError {
	return &AppError{
		Code:    CodeMissingField,
		Message: fmt.Sprintf("oracle reply missing required field: %s", field),
		Field:   field,
	}
}

func InvalidShape(field string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidShape,
		Message: fmt.Sprintf("oracle reply field %s has an unexpected shape", field),
		Field:   field,
		Cause:   cause,
	}
}

func RubricViolation(field, detail string) *AppError {
	return &AppError{
		Code:    CodeRubricViolation,
		Message: fmt.Sprintf("%s violates the rubric: %s", field, detail),
		Field:   field,
	}
}

func CallerContract(field string) *AppError {
	return &AppError{
		Code:    CodeCallerContract,
		Message: fmt.Sprintf("scores missing required field: %s", field),
		Field:   field,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
