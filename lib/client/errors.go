package client

import "errors"

var (
	ErrInvalidIssuer = errors.New("Okta issuer is not valid")
	ErrNoSession     = errors.New("No cached Okta session")
)
