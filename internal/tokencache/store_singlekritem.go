package tokencache

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/99designs/keyring"
	log "github.com/sirupsen/logrus"
)

const KeyringItemKey = "token-cache"
const KeyringItemLabel = "okta-idx token cache"

type singleKrItemDb struct {
	Tokens map[string]Entry
}

// SingleKrItemStore stores all tokens in a single keyring item
//
// On MacOS every keychain item has to be trusted again after each build of the
// binary, so keeping one item means a single prompt per upgrade.
type SingleKrItemStore struct {
	Keyring keyring.Keyring
}

func (s *SingleKrItemStore) getDb() (*singleKrItemDb, error) {
	item, err := s.Keyring.Get(KeyringItemKey)

	if err != nil {
		return nil, err
	}

	var unmarshalled singleKrItemDb
	if err := json.Unmarshal(item.Data, &unmarshalled); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshall db from keyring item")
	}

	return &unmarshalled, nil
}

func (s *SingleKrItemStore) putDb(db *singleKrItemDb) error {
	bytes, err := json.Marshal(*db)
	if err != nil {
		return err
	}

	return s.Keyring.Set(keyring.Item{
		Key:                         KeyringItemKey,
		Label:                       KeyringItemLabel,
		Data:                        bytes,
		KeychainNotTrustApplication: false,
	})
}

func (s *SingleKrItemStore) Get(k Key) (*Entry, error) {
	keyStr := k.Key()

	currentDb, err := s.getDb()
	if err == keyring.ErrKeyNotFound {
		log.Debugf("cache get `%s`: miss (no db)", keyStr)
		return nil, ErrTokenNotFound
	} else if err != nil {
		log.Debugf("cache get `%s`: miss (read error): %s", keyStr, err)
		return nil, err
	}

	entry, ok := currentDb.Tokens[keyStr]
	if !ok {
		log.Debugf("cache get `%s`: miss", keyStr)
		return nil, ErrTokenNotFound
	}

	if entry.Expired(0) {
		log.Debugf("cache get `%s`: expired", keyStr)
		return nil, ErrTokenExpired
	}

	log.Debugf("cache get `%s`: hit", keyStr)
	return &entry, nil
}

func (s *SingleKrItemStore) Put(k Key, entry *Entry) error {
	keyStr := k.Key()

	currentDb, err := s.getDb()
	if err == keyring.ErrKeyNotFound || (err == nil && currentDb.Tokens == nil) {
		log.Debugf("cache put: new db")
		currentDb = &singleKrItemDb{
			Tokens: map[string]Entry{},
		}
	} else if err != nil {
		log.Debugf("cache put `%s`: error (reading): %s", keyStr, err)
		return err
	}

	currentDb.Tokens[keyStr] = *entry

	// keyring has no check-and-set, so a concurrent writer can lose an entry
	if err := s.putDb(currentDb); err != nil {
		log.Debugf("cache put `%s`: error (writing): %s", keyStr, err)
		return err
	}
	log.Debugf("cache put `%s`: success", keyStr)

	return nil
}

func (s *SingleKrItemStore) Remove(k Key) error {
	currentDb, err := s.getDb()
	if err == keyring.ErrKeyNotFound {
		return nil
	} else if err != nil {
		return err
	}
	if _, ok := currentDb.Tokens[k.Key()]; !ok {
		return nil
	}
	delete(currentDb.Tokens, k.Key())
	return s.putDb(currentDb)
}
