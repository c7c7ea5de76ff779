package idx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidParameter         = errors.New("invalid parameter")
	ErrParameterImmutable       = errors.New("parameter is immutable")
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrInvalidRequestData       = errors.New("invalid request data")

	ErrInvalidFlow              = errors.New("invalid flow state")
	ErrMissingRelatedObject     = errors.New("missing related object")
	ErrUnknownRemediationOption = errors.New("unknown remediation option")
	ErrInteractionRequired      = errors.New("interaction required")
	ErrStateMismatch            = errors.New("redirect state does not match")

	ErrPollCancelled = errors.New("polling cancelled")
	ErrPollTimeout   = errors.New("polling exceeded its maximum duration")
)

// ParameterError is a local validation failure for a single field. It
// matches one of ErrInvalidParameter, ErrParameterImmutable or
// ErrMissingRequiredParameter with errors.Is.
type ParameterError struct {
	Name string
	Kind error
}

func (e *ParameterError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%v: %s", e.Kind, name)
}

func (e *ParameterError) Is(target error) bool {
	return target == e.Kind
}

func invalidParameter(name string) error {
	return &ParameterError{Name: name, Kind: ErrInvalidParameter}
}

func parameterImmutable(name string) error {
	return &ParameterError{Name: name, Kind: ErrParameterImmutable}
}

func missingRequiredParameter(name string) error {
	return &ParameterError{Name: name, Kind: ErrMissingRequiredParameter}
}

// MissingRelatedObjectError is returned in strict mode when a relatesTo
// path points at nothing.
type MissingRelatedObjectError struct {
	Path string
}

func (e *MissingRelatedObjectError) Error() string {
	return fmt.Sprintf("%v at %s", ErrMissingRelatedObject, e.Path)
}

func (e *MissingRelatedObjectError) Is(target error) bool {
	return target == ErrMissingRelatedObject
}

// ServerError carries an error reported by Okta, either as an OAuth2 error
// body or as IDX messages.
type ServerError struct {
	StatusCode  int
	Code        string
	Description string
	Messages    []Message
}

func (e *ServerError) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("server error %s: %s", e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("server error %s", e.Code)
	case len(e.Messages) > 0:
		texts := make([]string, len(e.Messages))
		for i, m := range e.Messages {
			texts[i] = m.Text
		}
		return fmt.Sprintf("server error: %s", strings.Join(texts, "; "))
	}
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}
