package annotations

import (
	"fmt"

	"github.com/toyz/synapse/internal/errors"
)

// ExtractRoute returns the verb token and literal path of a verb
// annotation. The argument list must be exactly one string literal.
func ExtractRoute(a *ParsedAnnotation) (verb, path string, err error) {
	if a == nil {
		return "", "", errors.NewInvalidAttributeFormatError("", "", "missing route annotation")
	}
	arg, err := singleString(a)
	if err != nil {
		return "", "", err
	}
	return a.Name, arg, nil
}

// ExtractPrefix returns the route prefix of a controller annotation. A nil
// annotation or one without arguments yields "".
func ExtractPrefix(a *ParsedAnnotation) (string, error) {
	if a == nil || len(a.Args) == 0 {
		return "", nil
	}
	return singleString(a)
}

func singleString(a *ParsedAnnotation) (string, error) {
	switch {
	case !a.HasArgs:
		return "", invalid(a, "expected a single string literal argument")
	case len(a.Args) != 1:
		return "", invalid(a, fmt.Sprintf("expected a single string literal argument, got %d arguments", len(a.Args)))
	case a.Args[0].Kind != StringValue:
		return "", invalid(a, fmt.Sprintf("expected a string literal, got %s %s", a.Args[0].Kind, a.Args[0].Text))
	}
	return a.Args[0].Text, nil
}

func invalid(a *ParsedAnnotation, reason string) error {
	return errors.NewInvalidAttributeFormatError(a.Name, a.Raw, reason).WithLocation(a.Location)
}

// FindVerbAnnotation returns the first verb annotation in list
func FindVerbAnnotation(list []*ParsedAnnotation) *ParsedAnnotation {
	for _, a := range list {
		if a.IsVerb() {
			return a
		}
	}
	return nil
}

// Find returns the first annotation named name
func Find(list []*ParsedAnnotation, name string) *ParsedAnnotation {
	for _, a := range list {
		if a.Name == name {
			return a
		}
	}
	return nil
}
