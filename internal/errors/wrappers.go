package errors

import "fmt"

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *SyntaxError {
	message := fmt.Sprintf("failed to parse %s", item)
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, message, cause),
	}
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(generationType, item string, cause error) *GenerationError {
	message := fmt.Sprintf("failed to generate %s", item)
	return &GenerationError{
		BaseError:      Wrap(GenerationErrorCode, message, cause),
		GenerationType: generationType,
		TargetFile:     item,
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *GenerationError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return &GenerationError{
		BaseError:      Wrap(TemplateErrorCode, message, cause),
		GenerationType: "template",
		TargetFile:     templateName,
		Stage:          operation,
	}
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}
