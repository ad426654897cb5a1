// Package config loads connection settings the way lib/config lays out a
// viper defaults ladder, plus an optional YAML override file that takes
// precedence over env-sourced defaults.
package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the settings a Client needs to dial and authenticate, plus
// the dataspace ACL/legal defaults used when creating new dataspaces.
type Config struct {
	URL               string            `mapstructure:"url" yaml:"url"`
	Username          string            `mapstructure:"username" yaml:"username"`
	Password          string            `mapstructure:"password" yaml:"password"`
	AccessToken       string            `mapstructure:"access_token" yaml:"access_token"`
	AdditionalHeaders map[string]string `mapstructure:"additional_headers" yaml:"additional_headers"`
	ACLOwners         []string          `mapstructure:"acl_owners" yaml:"acl_owners"`
	ACLViewers        []string          `mapstructure:"acl_viewers" yaml:"acl_viewers"`
	LegalTags         []string          `mapstructure:"legal_tags" yaml:"legal_tags"`
	DataCountries     []string          `mapstructure:"data_countries" yaml:"data_countries"`
}

func setDefaults() {
	viper.SetDefault("url", "")
	viper.SetDefault("username", "")
	viper.SetDefault("password", "")
	viper.SetDefault("access_token", "")
	viper.SetDefault("additional_headers", map[string]string{})
	viper.SetDefault("acl_owners", []string{})
	viper.SetDefault("acl_viewers", []string{})
	viper.SetDefault("legal_tags", []string{})
	viper.SetDefault("data_countries", []string{})
}

// Load reads URL/USERNAME/PASSWORD/ACCESS_TOKEN/ADDITIONAL_HEADERS and the
// acl_owners/acl_viewers/legal_tags/data_countries defaults from the
// environment, then applies yamlOverridePath on top if it is non-empty and
// exists, mirroring ETPConfig.load_from_yml's "YAML overwrites env"
// precedence.
func Load(yamlOverridePath string) (*Config, error) {
	viper.SetEnvPrefix("")
	viper.AutomaticEnv()
	setDefaults()

	for _, key := range []string{"url", "username", "password", "access_token", "additional_headers", "acl_owners", "acl_viewers", "legal_tags", "data_countries"} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if yamlOverridePath != "" {
		if _, err := os.Stat(yamlOverridePath); err == nil {
			raw, err := os.ReadFile(yamlOverridePath)
			if err != nil {
				return nil, err
			}
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return nil, err
			}
		} else {
			log.Warn().Str("path", yamlOverridePath).Msg("config: yaml override file not found, skipping")
		}
	}

	return &cfg, nil
}
