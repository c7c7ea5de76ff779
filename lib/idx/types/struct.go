package types

import (
	"context"
	"net/http"
)

const (
	// ContentTypeIONJSON is what the IDX endpoints accept and return.
	ContentTypeIONJSON = "application/ion+json; okta-version=1.0.0"
	ContentTypeJSON    = "application/json"
	ContentTypeForm    = "application/x-www-form-urlencoded"
)

// Request is a fully formed request handed to a Transport. Body is already
// encoded according to ContentType.
type Request struct {
	Method      string
	URL         string
	ContentType string
	Accept      string
	Body        []byte
	Header      http.Header
}

// Response is the raw reply from a Transport. Non-2xx status codes are not
// errors at this level; the caller decides how to interpret the body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests to Okta. Implementations must be safe for
// concurrent use; a polling loop and the main flow may share one.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// OAuth2ErrorResponse is the body of a failed OAuth2 endpoint call
// (interact, token).
type OAuth2ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// InteractResponse is the body returned by the interact endpoint.
type InteractResponse struct {
	InteractionHandle string `json:"interaction_handle"`
}

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
}
