package tokencache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"

	"github.com/segmentio/okta-idx/lib/idx"
)

type store interface {
	Get(Key) (*Entry, error)
	Put(Key, *Entry) error
	Remove(Key) error
}

var theDistantPast = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)

type fixedKey struct {
	v string
}

func (k *fixedKey) Key() string {
	return k.v
}

func testStore(t *testing.T, storeFactory func() store) {
	tName := "put-get"
	t.Run(tName, func(t *testing.T) {
		st := storeFactory()
		entry := Entry{
			Name: tName,
			Token: idx.Token{
				TokenType:   "Bearer",
				AccessToken: "access-" + tName,
				ExpiresIn:   3600,
				IssuedAt:    time.Now().UTC().Truncate(time.Second),
			},
		}
		key := fixedKey{tName}

		err := st.Put(&key, &entry)
		if err != nil {
			t.Fatalf("error on put: %s", err)
		}

		got, err := st.Get(&key)
		if err != nil {
			t.Fatalf("error on get: %s", err)
		}
		assert.Equal(t, entry, *got)
	})

	tName = "get expired should return ErrTokenExpired"
	t.Run(tName, func(t *testing.T) {
		st := storeFactory()
		entry := Entry{
			Name: tName,
			Token: idx.Token{
				AccessToken: "access",
				ExpiresIn:   60,
				IssuedAt:    theDistantPast,
			},
		}
		key := fixedKey{tName}

		err := st.Put(&key, &entry)
		if err != nil {
			t.Fatalf("error on put: %s", err)
		}

		_, err = st.Get(&key)
		if !xerrors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected get err to be ErrTokenExpired; is %s", err)
		}
	})

	tName = "get missing should return ErrTokenNotFound"
	t.Run(tName, func(t *testing.T) {
		st := storeFactory()
		_, err := st.Get(&fixedKey{tName})
		if !xerrors.Is(err, ErrTokenNotFound) {
			t.Fatalf("expected get err to be ErrTokenNotFound; is %s", err)
		}
	})

	tName = "remove"
	t.Run(tName, func(t *testing.T) {
		st := storeFactory()
		key := fixedKey{tName}
		assert.NoError(t, st.Remove(&key), "removing a missing token is fine")

		err := st.Put(&key, &Entry{Name: tName, Token: idx.Token{ExpiresIn: 60, IssuedAt: time.Now()}})
		assert.NoError(t, err)
		assert.NoError(t, st.Remove(&key))

		_, err = st.Get(&key)
		assert.True(t, xerrors.Is(err, ErrTokenNotFound))
	})
}
