package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeBotError         = "BOT_ERROR"
	CodeAPIError         = "API_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
	CodeCache            = "CACHE_ERROR"
	CodeMalformedRecord  = "MALFORMED_RECORD"
	CodeInvalidSelection = "INVALID_SELECTION"
	CodeDialogueTimeout  = "DIALOGUE_TIMEOUT"
	CodeImageNotFound    = "IMAGE_NOT_FOUND"
)

// Sentinels matched with errors.Is at component boundaries.
var (
	ErrMalformedRecord  = stderrors.New("malformed input record")
	ErrEmptyCatalog     = stderrors.New("catalog has no records")
	ErrInvalidSelection = stderrors.New("invalid selection")
	ErrDialogueTimeout  = stderrors.New("dialogue timed out")
	ErrImageNotFound    = stderrors.New("image not found")
)

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

func NewBotError(message, code string, statusCode int, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

type APIError struct {
	*BotError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*BotError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*BotError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// RecordError reports a dataset row that lacks a required field.
// It unwraps to ErrMalformedRecord.
type RecordError struct {
	*BotError
	Line  int
	Field string
}

func NewRecordError(line int, field string) *RecordError {
	return &RecordError{
		BotError: &BotError{
			Message:    fmt.Sprintf("line %d: missing %s", line, field),
			Code:       CodeMalformedRecord,
			StatusCode: 400,
			Context: map[string]any{
				"line":  line,
				"field": field,
			},
			Cause: ErrMalformedRecord,
		},
		Line:  line,
		Field: field,
	}
}

// DialogueError ends a selection flow. Its cause is one of ErrInvalidSelection,
// ErrDialogueTimeout or ErrImageNotFound.
type DialogueError struct {
	*BotError
	Step string
}

func NewDialogueError(code, step string, cause error) *DialogueError {
	return &DialogueError{
		BotError: &BotError{
			Message:    fmt.Sprintf("%s step ended", step),
			Code:       code,
			StatusCode: 400,
			Context: map[string]any{
				"step": step,
			},
			Cause: cause,
		},
		Step: step,
	}
}

// NewImageNotFound wraps the reason an image lookup failed. Callers only see
// ErrImageNotFound through errors.Is; the reason is kept for logs.
func NewImageNotFound(query string, reason error) *BotError {
	cause := ErrImageNotFound
	if reason != nil {
		cause = fmt.Errorf("%w: %w", ErrImageNotFound, reason)
	}
	return &BotError{
		Message:    "no image for " + query,
		Code:       CodeImageNotFound,
		StatusCode: 404,
		Context: map[string]any{
			"query": query,
		},
		Cause: cause,
	}
}
