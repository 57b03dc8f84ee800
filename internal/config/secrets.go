// Package config loads the deployment secrets file shared with the Django site.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// DefaultSecretsPath is where provisioning drops the secrets file.
const DefaultSecretsPath = "/etc/cac_secrets"

// Secrets mirrors the YAML secrets file.
type Secrets struct {
	SecretKey  string   `mapstructure:"secret_key"`
	Database   Database `mapstructure:"database"`
	Production bool     `mapstructure:"production"`
}

// Database holds the connection settings under the "database" key. The
// file uses upper case keys; viper matches them case-insensitively.
type Database struct {
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
}

// URL builds a pgx connection string.
func (d Database) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}

	return u.String()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("secret_key", "%&_DEVELOPMENT_SECRET_KEY_#42*pk!3y6lvk&1psyk=e=pr")
	v.SetDefault("database.name", "cac_tripplanner")
	v.SetDefault("database.user", "cac_tripplanner")
	v.SetDefault("database.password", "cac_tripplanner")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "5432")
	v.SetDefault("production", false)
}

// LoadSecrets reads the secrets file at path. A missing file yields the
// development defaults. CAC_* environment variables override both, e.g.
// CAC_DATABASE_HOST.
func LoadSecrets(path string) (*Secrets, bool, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CAC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := true

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, false, fmt.Errorf("read secrets %s: %w", path, err)
		}

		found = false
	}

	secrets := &Secrets{}
	if err := v.Unmarshal(secrets); err != nil {
		return nil, false, fmt.Errorf("decode secrets %s: %w", path, err)
	}

	return secrets, found, nil
}
