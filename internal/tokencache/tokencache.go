package tokencache

import (
	"encoding/json"
	"errors"

	"github.com/segmentio/okta-idx/lib/idx"
)

var (
	ErrTokenExpired  = errors.New("Token expired")
	ErrTokenNotFound = errors.New("Token not found")
)

type Entry struct {
	Name string
	idx.Token
}

func (e *Entry) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

type Key interface {
	Key() string
}

// ProfileKey identifies the tokens of one config profile and client.
type ProfileKey struct {
	Profile  string
	ClientID string
}

func (k ProfileKey) Key() string {
	return "okta-idx-token-" + k.Profile + "-" + k.ClientID
}
