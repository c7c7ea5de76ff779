package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mitchellh/go-homedir"
	"github.com/vaughan0/go-ini"

	"github.com/segmentio/okta-idx/lib/client"
	"github.com/segmentio/okta-idx/lib/idx"
)

const (
	ConfigFileEnv  = "OKTA_IDX_CONFIG_FILE"
	DefaultProfile = "okta"
)

type Profiles map[string]map[string]string

type config interface {
	Parse() (Profiles, error)
}

type fileConfig struct {
	file string
}

func NewConfigFromEnv() (config, error) {
	file := os.Getenv(ConfigFileEnv)
	if file == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		file = filepath.Join(home, "/.okta/idx.ini")
		if _, err := os.Stat(file); os.IsNotExist(err) {
			file = ""
		}
	}
	return &fileConfig{file: file}, nil
}

func NewConfigFromFile(file string) config {
	return &fileConfig{file: file}
}

func (c *fileConfig) Parse() (Profiles, error) {
	profiles := Profiles{DefaultProfile: map[string]string{}}
	if c.file == "" {
		return profiles, nil
	}

	log.Debugf("Parsing config file %s", c.file)
	f, err := ini.LoadFile(c.file)
	if err != nil {
		return nil, fmt.Errorf("Error parsing config file %q: %v", c.file, err)
	}

	for sectionName, section := range f {
		profiles[strings.TrimPrefix(sectionName, "profile ")] = section
	}

	return profiles, nil
}

// GetValue looks config_key up in profile, then in its source_profile, then
// in the okta section. It returns the value and the profile it came from.
func (p Profiles) GetValue(profile string, config_key string) (string, string, error) {
	config_value, ok := p[profile][config_key]
	if ok {
		return config_value, profile, nil
	}

	// Lookup from the `source_profile`, if it exists
	source, ok := p[profile]["source_profile"]
	if ok {
		config_value, ok := p[source][config_key]
		if ok {
			return config_value, source, nil
		}
	}

	// Fallback to `okta` if no profile supplies the value
	config_value, ok = p[DefaultProfile][config_key]
	if ok {
		return config_value, DefaultProfile, nil
	}

	return "", "", fmt.Errorf("Could not find %s in %s, source profile, or %s", config_key, profile, DefaultProfile)
}

func (p Profiles) getOr(profile, key, def string) string {
	v, _, err := p.GetValue(profile, key)
	if err != nil {
		return def
	}
	return v
}

// IDXConfig builds the flow configuration for profile. The issuer is taken
// from `issuer`, or built from `org`, `region` and `auth_server`.
func (p Profiles) IDXConfig(profile string) (idx.Config, error) {
	var cfg idx.Config
	var err error

	cfg.Issuer = p.getOr(profile, "issuer", "")
	if cfg.Issuer == "" {
		org, _, err := p.GetValue(profile, "org")
		if err != nil {
			return cfg, fmt.Errorf("profile %s needs an issuer or an org", profile)
		}
		cfg.Issuer, err = client.IssuerURL(org, p.getOr(profile, "region", "us"), p.getOr(profile, "auth_server", ""))
		if err != nil {
			return cfg, err
		}
	}

	if cfg.ClientID, _, err = p.GetValue(profile, "client_id"); err != nil {
		return cfg, err
	}
	if cfg.RedirectURI, _, err = p.GetValue(profile, "redirect_uri"); err != nil {
		return cfg, err
	}
	cfg.ClientSecret = p.getOr(profile, "client_secret", "")
	if scopes := p.getOr(profile, "scopes", ""); scopes != "" {
		cfg.Scopes = strings.Fields(scopes)
	}

	if cfg.StrictRelations, err = p.getBool(profile, "strict_relations"); err != nil {
		return cfg, err
	}
	if cfg.Poll.DelayFirstRequest, err = p.getBool(profile, "poll_delay_first_request"); err != nil {
		return cfg, err
	}
	if cfg.Poll.IgnoreLostConnection, err = p.getBool(profile, "poll_ignore_lost_connection"); err != nil {
		return cfg, err
	}
	if cfg.Poll.DefaultInterval, err = p.getDuration(profile, "poll_interval"); err != nil {
		return cfg, err
	}
	if cfg.Poll.MaxDuration, err = p.getDuration(profile, "poll_max_duration"); err != nil {
		return cfg, err
	}
	if retries := p.getOr(profile, "poll_max_retries", ""); retries != "" {
		if cfg.Poll.MaxRetries, err = strconv.Atoi(retries); err != nil {
			return cfg, fmt.Errorf("poll_max_retries: %v", err)
		}
	}

	cfg = cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func (p Profiles) getBool(profile, key string) (bool, error) {
	v := p.getOr(profile, key, "")
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %v", key, err)
	}
	return b, nil
}

func (p Profiles) getDuration(profile, key string) (time.Duration, error) {
	v := p.getOr(profile, key, "")
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", key, err)
	}
	return d, nil
}
