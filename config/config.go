// Package config loads the application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-playground/errors/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the full application configuration.
type Config struct {
	Azure Azure `yaml:"azure"`
	API   API   `yaml:"api"`
	Cache Cache `yaml:"cache"`
}

// Azure configures the Azure AD application the session signs in against.
type Azure struct {
	// Authority is the OIDC issuer, e.g.
	// https://login.microsoftonline.com/<tenant>/v2.0
	Authority             string   `yaml:"authority"             env:"FXADMIN_AZURE_AUTHORITY, overwrite"                validate:"required,url"`
	ClientID              string   `yaml:"clientId"              env:"FXADMIN_AZURE_CLIENT_ID, overwrite"                validate:"required"`
	ClientSecret          string   `yaml:"clientSecret"          env:"FXADMIN_AZURE_CLIENT_SECRET, overwrite"`
	RedirectURI           string   `yaml:"redirectUri"           env:"FXADMIN_AZURE_REDIRECT_URI, overwrite, default=http://localhost:53100/auth/callback" validate:"required,url"`
	PostLogoutRedirectURI string   `yaml:"postLogoutRedirectUri" env:"FXADMIN_AZURE_POST_LOGOUT_REDIRECT_URI, overwrite"`
	Scopes                []string `yaml:"scopes"                env:"FXADMIN_AZURE_SCOPES, overwrite"`
}

// API configures the administration API endpoint.
type API struct {
	URL         string `yaml:"url"         env:"FXADMIN_API_URL, overwrite, default=http://localhost:7071/api" validate:"required,url"`
	FunctionKey string `yaml:"functionKey" env:"FXADMIN_API_FUNCTION_KEY, overwrite"`
}

// Cache configures the on-disk token cache.
type Cache struct {
	// Path is the token cache file. When only Key is set, Path defaults to
	// the conventional location; without a Key, tokens stay in memory.
	Path string `yaml:"path" env:"FXADMIN_CACHE_PATH, overwrite"`
	// Key is the base64 encoded encryption key for the cache file. Required
	// when Path is set.
	Key string `yaml:"key"  env:"FXADMIN_CACHE_KEY, overwrite" validate:"required_with=Path"`
}

// Load reads the YAML file at path when it exists, applies environment
// variable overrides, and validates the result. A missing file is not an
// error; the environment alone can carry the configuration.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "os.ReadFile()")
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, errors.Wrap(err, "yaml.Unmarshal()")
			}
		}
	}

	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, errors.Wrap(err, "envconfig.Process()")
	}

	cfg.applyDefaults()

	if err := validate.StructCtx(ctx, cfg); err != nil {
		return nil, errors.Wrap(err, "validator.Validate.StructCtx()")
	}

	return cfg, nil
}

// DefaultPath returns the conventional configuration file location under the
// user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "fxadmin", "config.yaml")
}

// DefaultCachePath returns the conventional token cache location under the
// user's config directory.
func DefaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "fxadmin", "tokens.bin")
}

func (c *Config) applyDefaults() {
	if c.Azure.PostLogoutRedirectURI == "" && c.Azure.RedirectURI != "" {
		c.Azure.PostLogoutRedirectURI = c.Azure.RedirectURI + "/login"
	}
	if c.Cache.Key != "" && c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath()
	}
}
