package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"vuetifyconf-cli/internal/imports"
	"vuetifyconf-cli/internal/merge"
	"vuetifyconf-cli/internal/parser"
)

// Error types for different categories of failures
var (
	ErrConfigurationInvalid = errors.New("configuration error")
	ErrMalformedSource      = parser.ErrMalformedSource
	ErrUnresolvedImport     = imports.ErrUnresolvedImport
	ErrImportConflict       = imports.ErrImportConflict
	ErrUnsupportedValue     = merge.ErrUnsupportedValue
	ErrLoadFailed           = errors.New("load error")
	ErrTemplateInvalid      = errors.New("template error")
	ErrOutputFailed         = errors.New("output error")
	ErrValidationFailed     = errors.New("validation error")
)

// Error represents a structured error with actionable guidance
type Error struct {
	Type     error
	Message  string
	Guidance string
	Cause    error
}

func (e *Error) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s\n\nSuggestion: %s", e.Type, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the error category so callers can test against the sentinels
// even when Cause does not wrap them.
func (e *Error) Is(target error) bool {
	return e.Type == target
}

// Error constructors with actionable guidance

func NewConfigurationError(message string, cause error) *Error {
	guidance := "Check the syntax of vuetifyconf.toml and ensure all paths exist. " +
		"Use 'vuetifyconf --config /path/to/vuetifyconf.toml' to specify a different manifest."

	text := message
	if cause != nil {
		text += ": " + cause.Error()
	}
	if strings.Contains(text, "permission") {
		guidance = "Check file permissions of the project directory and its manifest."
	} else if strings.Contains(text, "root_dir") {
		guidance = "The project root must be an existing directory. " +
			"Pass it with --root or set root_dir in vuetifyconf.toml."
	} else if strings.Contains(text, "compatibility") || strings.Contains(text, "satisfy") {
		guidance = "The manifest requires another vuetifyconf version. " +
			"Update the tool or relax the compatibility constraint."
	}

	return &Error{
		Type:     ErrConfigurationInvalid,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

// NewLoadError classifies a failure of the layer walk.
func NewLoadError(cause error) *Error {
	e := &Error{
		Type:     ErrLoadFailed,
		Message:  cause.Error(),
		Guidance: "Check that every layer directory is readable.",
		Cause:    cause,
	}

	var syntaxErr *parser.SyntaxError
	var unresolved *imports.UnresolvedError
	var conflict *imports.ConflictError
	var unsupported *merge.UnsupportedError

	switch {
	case errors.As(cause, &syntaxErr):
		e.Type = ErrMalformedSource
		e.Guidance = fmt.Sprintf("Fix the syntax error in %s. Configuration files must parse "+
			"as TypeScript or JavaScript modules.", syntaxErr.Pos.File)
	case errors.As(cause, &unresolved):
		e.Type = ErrUnresolvedImport
		e.Guidance = fmt.Sprintf("'%s' is used as a configuration value in %s but is neither imported "+
			"nor declared as a local constant. Import it in that file.", unresolved.Local, unresolved.Pos.File)
	case errors.As(cause, &conflict):
		e.Type = ErrImportConflict
		e.Guidance = fmt.Sprintf("Two layers import different values as '%s'. Rename one of the "+
			"imports (import { x as otherName }) so both can be emitted.", conflict.Local)
	case errors.As(cause, &unsupported):
		e.Type = ErrUnsupportedValue
		e.Guidance = fmt.Sprintf("The value at '%s' cannot be merged without evaluating it. "+
			"Replace spreads, computed keys and methods with plain properties.", unsupported.Path)
	case errors.Is(cause, ErrMalformedSource):
		e.Type = ErrMalformedSource
	}
	return e
}

func NewTemplateError(templateName string, cause error) *Error {
	message := fmt.Sprintf("failed to render artifact '%s'", templateName)
	guidance := fmt.Sprintf("Check the template override '%s.mjs.tmpl' for valid Go template syntax.", templateName)

	if strings.Contains(cause.Error(), "not found") {
		guidance = fmt.Sprintf("No template named '%s' exists. Remove the override or restore "+
			"the builtin template name.", templateName)
	}

	return &Error{
		Type:     ErrTemplateInvalid,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewOutputError(target string, cause error) *Error {
	message := fmt.Sprintf("failed to output to target '%s'", target)
	guidance := "Check that the output target is valid and accessible."

	if target == "clipboard" {
		guidance = "Clipboard access failed. Ensure you're running in a graphical environment " +
			"or try using --target stdout instead."
	} else if target == "file" {
		guidance = "Failed to write the generated modules. Check that the build directory " +
			"is writable."
	}

	return &Error{
		Type:     ErrOutputFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewValidationError(field string, value interface{}, reason string) *Error {
	message := fmt.Sprintf("validation failed for %s: %v (%s)", field, value, reason)
	guidance := "Check the input value and ensure it meets the required format."

	switch field {
	case "target":
		guidance = "Target must be 'file', 'stdout' or 'clipboard'. Example: --target stdout"
	case "interactive":
		guidance = "Use either --interactive or --yes, not both."
	case "layers":
		guidance = "Layer paths must not be empty. They are resolved relative to the project root."
	}

	return &Error{
		Type:     ErrValidationFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    nil,
	}
}

// Recovery strategies

// RecoverFromError attaches fallback hints to common errors
func RecoverFromError(err error) error {
	if err == nil {
		return nil
	}

	var structured *Error
	if !errors.As(err, &structured) {
		return &Error{
			Type:     errors.New("unknown error"),
			Message:  err.Error(),
			Guidance: "An unexpected error occurred. Please check your inputs and try again.",
			Cause:    err,
		}
	}

	switch structured.Type {
	case ErrConfigurationInvalid:
		return recoverFromConfigError(structured)
	case ErrOutputFailed:
		return recoverFromOutputError(structured)
	default:
		return structured
	}
}

func recoverFromConfigError(err *Error) error {
	if !strings.Contains(err.Guidance, "vuetifyconf init") {
		err.Guidance += "\n\nRun 'vuetifyconf init' to scaffold a manifest for this project."
	}
	return err
}

func recoverFromOutputError(err *Error) error {
	if strings.Contains(err.Message, "clipboard") {
		err.Guidance += "\n\nTry using --target stdout as a fallback."
	}
	return err
}

// IsRecoverableError checks if an error can be recovered from
func IsRecoverableError(err error) bool {
	var structured *Error
	if !errors.As(err, &structured) {
		return false
	}

	switch structured.Type {
	case ErrOutputFailed:
		return strings.Contains(structured.Message, "clipboard")
	default:
		return false
	}
}
