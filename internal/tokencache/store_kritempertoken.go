package tokencache

import (
	"encoding/json"

	"github.com/99designs/keyring"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type KrItemPerTokenStore struct {
	Keyring keyring.Keyring
}

func (s *KrItemPerTokenStore) Get(k Key) (*Entry, error) {
	item, err := s.Keyring.Get(k.Key())
	if err == keyring.ErrKeyNotFound {
		return nil, ErrTokenNotFound
	} else if err != nil {
		return nil, err
	}

	var entry Entry

	if err = json.Unmarshal(item.Data, &entry); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshall token from keyring item")
	}

	if entry.Expired(0) {
		return nil, ErrTokenExpired
	}

	return &entry, nil
}

func (s *KrItemPerTokenStore) Put(k Key, entry *Entry) error {
	bytes, err := entry.Bytes()
	if err != nil {
		return err
	}

	log.Debugf("Writing token for %s to keyring", entry.Name)
	return s.Keyring.Set(keyring.Item{
		Key:                         k.Key(),
		Label:                       "okta-idx token for " + entry.Name,
		Data:                        bytes,
		KeychainNotTrustApplication: false,
	})
}

func (s *KrItemPerTokenStore) Remove(k Key) error {
	err := s.Keyring.Remove(k.Key())
	if err == keyring.ErrKeyNotFound {
		return nil
	}
	return err
}
