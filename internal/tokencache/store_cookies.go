package tokencache

import (
	"github.com/99designs/keyring"
	"github.com/pkg/errors"
)

// CookieStore keeps raw cookie values in the keyring, one item per cookie.
// It satisfies client.SessionCache.
type CookieStore struct {
	Keyring keyring.Keyring
}

func (s *CookieStore) Get(key string) ([]byte, error) {
	item, err := s.Keyring.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "cookie %s", key)
	}
	return item.Data, nil
}

func (s *CookieStore) Put(key string, data []byte, label string) error {
	return s.Keyring.Set(keyring.Item{
		Key:                         key,
		Label:                       label,
		Data:                        data,
		KeychainNotTrustApplication: false,
	})
}
