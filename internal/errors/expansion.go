package errors

import "fmt"

// Sentinels for errors.Is. Any error carrying the same code matches.
var (
	ErrInvalidAttributeFormat = New(InvalidAttributeFormatCode, "invalid attribute format")
	ErrDependencyConflict     = New(DependencyConflictCode, "dependency conflict")
	ErrUnknownHttpMethod      = New(UnknownHttpMethodCode, "unknown http method")
)

// InvalidAttributeFormatError is reported when a route annotation is not
// followed by exactly one string literal path
type InvalidAttributeFormatError struct {
	*BaseError
	Annotation string // annotation name, e.g. "get"
	Raw        string // annotation text as written
}

// NewInvalidAttributeFormatError creates an error for a malformed annotation
func NewInvalidAttributeFormatError(annotation, raw, reason string) *InvalidAttributeFormatError {
	err := &InvalidAttributeFormatError{
		BaseError:  Newf(InvalidAttributeFormatCode, "invalid attribute format for '%s': %s", annotation, reason),
		Annotation: annotation,
		Raw:        raw,
	}
	err.WithContext("annotation", annotation)
	err.WithSuggestion(fmt.Sprintf("write the route as //synapse::%s(\"/path\")", annotation))
	return err
}

// WithLocation adds location information to the error
func (e *InvalidAttributeFormatError) WithLocation(loc SourceLocation) *InvalidAttributeFormatError {
	e.BaseError.WithLocation(loc)
	return e
}

// DependencyConflictError is reported when two injections within one
// controller derive the same provider id
type DependencyConflictError struct {
	*BaseError
	ProviderID string
	Handler    string // handler whose registration collided
}

// NewDependencyConflictError creates a conflict error for providerID
func NewDependencyConflictError(providerID, handler string) *DependencyConflictError {
	err := &DependencyConflictError{
		BaseError:  Newf(DependencyConflictCode, "dependency conflict: provider '%s' is already registered", providerID),
		ProviderID: providerID,
		Handler:    handler,
	}
	err.WithContext("provider_id", providerID)
	if handler != "" {
		err.WithContext("handler", handler)
	}
	err.WithSuggestion("each (method, service) pair may be injected by only one handler of a controller")
	return err
}

// WithLocation adds location information to the error
func (e *DependencyConflictError) WithLocation(loc SourceLocation) *DependencyConflictError {
	e.BaseError.WithLocation(loc)
	return e
}

// UnknownHttpMethodError is reported when a verb annotation does not name
// a supported HTTP method
type UnknownHttpMethodError struct {
	*BaseError
	Verb string
}

// NewUnknownHttpMethodError creates an error for an unsupported verb
func NewUnknownHttpMethodError(verb string, supported []string) *UnknownHttpMethodError {
	err := &UnknownHttpMethodError{
		BaseError: Newf(UnknownHttpMethodCode, "unknown http method '%s'", verb),
		Verb:      verb,
	}
	err.WithContext("verb", verb)
	if len(supported) > 0 {
		err.WithSuggestion(fmt.Sprintf("use one of: %v", supported))
	}
	return err
}

// WithLocation adds location information to the error
func (e *UnknownHttpMethodError) WithLocation(loc SourceLocation) *UnknownHttpMethodError {
	e.BaseError.WithLocation(loc)
	return e
}
