package cmd

import (
	"fmt"
	"strings"

	"github.com/99designs/keyring"
	"github.com/manifoldco/promptui"
	"golang.org/x/xerrors"

	"github.com/segmentio/okta-idx/internal/tokencache"
	"github.com/segmentio/okta-idx/lib"
	"github.com/segmentio/okta-idx/lib/client"
	"github.com/segmentio/okta-idx/lib/idx"
)

func chooseOne(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Size:  10,
		Searcher: func(input string, index int) bool {
			name := strings.Replace(strings.ToLower(items[index]), " ", "", -1)
			input = strings.Replace(strings.ToLower(input), " ", "", -1)

			return strings.Contains(name, input)
		},
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "\U0001F5DD {{ . | cyan }}",
			Inactive: "  {{ . | cyan }}",
			Selected: "\U0001F5DD {{ . | red | cyan }}",
		},
		Items: items,
	}

	i, _, err := prompt.Run()

	return i, err
}

func loadProfiles() (lib.Profiles, error) {
	if FlagConfigFile != "" {
		return lib.NewConfigFromFile(FlagConfigFile).Parse()
	}
	config, err := lib.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return config.Parse()
}

func loadIDXConfig(profile string) (idx.Config, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return idx.Config{}, err
	}
	if _, ok := profiles[profile]; !ok {
		return idx.Config{}, fmt.Errorf("Profile '%s' not found in your config", profile)
	}
	return profiles.IDXConfig(profile)
}

func getKeyring(backend string) (keyring.Keyring, error) {
	kr, err := openKeyring(backend)
	if err != nil {
		return nil, xerrors.Errorf("opening keyring: %w", err)
	}
	return kr, nil
}

// createFlow wires a Flow whose transport persists Okta's device cookies in kr.
func createFlow(kr keyring.Keyring, cfg idx.Config) (*idx.Flow, error) {
	oktaClient, err := client.NewOktaClient(cfg.Issuer, cfg.ClientID, &tokencache.CookieStore{Keyring: kr}, nil)
	if err != nil {
		return nil, err
	}
	return idx.NewFlow(cfg, oktaClient)
}

func tokenKey(profile string, cfg idx.Config) tokencache.ProfileKey {
	return tokencache.ProfileKey{Profile: profile, ClientID: cfg.ClientID}
}
