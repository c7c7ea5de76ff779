package types

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionLost marks transport failures where the connection dropped
	// or could not be established. Polling treats these as recoverable.
	ErrConnectionLost = errors.New("network connection lost")

	ErrUnexpectedResponse = errors.New("unexpected response")
)

type ErrorKind int

const (
	ErrorKindNetwork ErrorKind = iota
	ErrorKindServer
	ErrorKindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNetwork:
		return "network"
	case ErrorKindServer:
		return "server"
	case ErrorKindValidation:
		return "validation"
	}
	return "unknown"
}

// APIClientError is returned by a Transport when a request could not be
// completed.
type APIClientError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *APIClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error: %s %s: status %d: %v", e.Kind, e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %s %s: %v", e.Kind, e.Method, e.URL, e.Err)
}

func (e *APIClientError) Unwrap() error {
	return e.Err
}
