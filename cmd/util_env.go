package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/segmentio/okta-idx/internal/tokencache"
)

type kvEnv map[string]string

func (e kvEnv) LoadFromEnviron(kevs ...string) {
	for _, kev := range kevs {
		kv := strings.SplitN(kev, "=", 2)
		if len(kv) != 2 {
			// skip invalid
			continue
		}
		e[kv[0]] = kv[1]
	}
}

func (e kvEnv) Environ() []string {
	r := []string{}
	for k, v := range e {
		r = append(r, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(r)
	return r
}

func (e kvEnv) Unset(keys ...string) {
	for _, k := range keys {
		delete(e, k)
	}
}

// AddToken sets the variables a child process reads its Okta tokens from.
func (e kvEnv) AddToken(profile string, entry *tokencache.Entry) {
	e.Unset("OKTA_ID_TOKEN", "OKTA_REFRESH_TOKEN")

	e["OKTA_IDX_PROFILE"] = profile
	e["OKTA_ACCESS_TOKEN"] = entry.AccessToken
	e["OKTA_TOKEN_TYPE"] = entry.TokenType
	e["OKTA_TOKEN_EXPIRATION"] = fmt.Sprintf("%d", entry.Expiry().Unix())
	if entry.IDToken != "" {
		e["OKTA_ID_TOKEN"] = entry.IDToken
	}
}
