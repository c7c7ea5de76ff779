package idx

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"
)

// pkce returns a fresh S256 verifier/challenge pair.
func pkce() (string, string, error) {
	codeVerifier, err := randomHex(30)
	if err != nil {
		return "", "", err
	}

	hash := sha256.New()
	hash.Write([]byte(codeVerifier))
	codeChallenge := base64.RawURLEncoding.EncodeToString(hash.Sum(nil))

	return codeVerifier, codeChallenge, nil
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func newState() string {
	return uuid.NewString()
}
