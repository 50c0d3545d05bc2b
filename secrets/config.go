package secrets

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/spf13/viper"
)

// ConfigEnvPrefix is the prefix of environment variables overriding values of the secrets config file,
// for example ICON_SECRETS_TOKEN
const ConfigEnvPrefix = "ICON_SECRETS"

// SecretsManagerConfig describes where wallet keystores of the cli are kept
type SecretsManagerConfig struct {
	Token     string                 `json:"token" mapstructure:"token"`
	ServerURL string                 `json:"server_url" mapstructure:"server_url"`
	Type      SecretsManagerType     `json:"type" mapstructure:"type"`
	Name      string                 `json:"name" mapstructure:"name"`
	Namespace string                 `json:"namespace" mapstructure:"namespace"`
	Path      string                 `json:"path" mapstructure:"path"`
	Extra     map[string]interface{} `json:"extra" mapstructure:"extra"`
}

// WriteConfig stores the config as json
func (c *SecretsManagerConfig) WriteConfig(path string) error {
	jsonBytes, err := json.MarshalIndent(c, "", " ")
	if err != nil {
		return err
	}

	return common.SaveFileSafe(path, jsonBytes, 0660)
}

// ReadConfig reads the config from a json, yaml or toml file.
// Values present in the file can be overridden with ICON_SECRETS_<KEY> environment variables.
func ReadConfig(path string) (*SecretsManagerConfig, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetEnvPrefix(ConfigEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read secrets config %s: %w", path, err)
	}

	config := &SecretsManagerConfig{}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode secrets config %s: %w", path, err)
	}

	if len(config.Extra) == 0 {
		config.Extra = nil
	}

	if config.Type != "" && !SupportedServiceManager(config.Type) {
		return nil, fmt.Errorf("unsupported secrets manager: %s", config.Type)
	}

	return config, nil
}
