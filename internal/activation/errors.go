package activation

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried by ActivationError
const (
	CodeNotFound         = "not_found"
	CodeInstallFailed    = "install_failed"
	CodeActivationFailed = "activation_failed"
	CodePermissionDenied = "permission_denied"
)

// ActivationError is the typed outcome of a failed step.
// A nil *ActivationError on a node means the plugin is active.
type ActivationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Plugin  string `json:"plugin,omitempty"`
}

func (e *ActivationError) Error() string {
	return e.Message
}

// NewError creates an ActivationError
func NewError(code, message string) *ActivationError {
	return &ActivationError{Code: code, Message: message}
}

// Errorf creates an ActivationError with a formatted message
func Errorf(code, format string, args ...any) *ActivationError {
	return &ActivationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsActivationError returns err as an *ActivationError.
// Errors that do not wrap one are given fallback as their code.
func AsActivationError(err error, fallback string) *ActivationError {
	if err == nil {
		return nil
	}
	var ae *ActivationError
	if errors.As(err, &ae) {
		return ae
	}
	return &ActivationError{Code: fallback, Message: err.Error()}
}

// CodeOf returns the code of the first ActivationError in err's chain, or ""
func CodeOf(err error) string {
	var ae *ActivationError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// withPlugin returns a copy of e attributed to id
func withPlugin(e *ActivationError, id string) *ActivationError {
	c := *e
	if c.Plugin == "" {
		c.Plugin = id
	}
	return &c
}

// CombinedError aggregates every failed node of one activation request
type CombinedError struct {
	Errors []*ActivationError
}

func (e *CombinedError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Message)
	}
	return strings.Join(msgs, " ")
}

// Unwrap exposes the node errors to errors.Is and errors.As
func (e *CombinedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// Plugins returns the identifiers of the failed plugins
func (e *CombinedError) Plugins() []string {
	ids := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		ids = append(ids, err.Plugin)
	}
	return ids
}
