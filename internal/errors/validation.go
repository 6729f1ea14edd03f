package errors

import "fmt"

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field    string // field that failed validation
	Expected string // what was expected
	Actual   string // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("validation failed for field '%s': expected %s, got %s", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// NewValidationErrorf creates a validation error with a free-form message
func NewValidationErrorf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		BaseError: Newf(ValidationErrorCode, format, args...),
		Field:     field,
	}
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError represents a syntax parsing error
type SyntaxError struct {
	*BaseError
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// GenerationError represents a failure while producing output
type GenerationError struct {
	*BaseError
	GenerationType string // handler, manager, output, ...
	TargetFile     string
	Stage          string
}

// NewGenerationError creates a new generation error
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{
		BaseError: New(GenerationErrorCode, message),
	}
}

// WithTargetFile sets the file being generated
func (e *GenerationError) WithTargetFile(targetFile string) *GenerationError {
	e.TargetFile = targetFile
	e.BaseError.WithContext("target_file", targetFile)
	return e
}

// WithStage sets the generation stage that failed
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	return e
}
