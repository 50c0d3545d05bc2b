package helper

import (
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets/awsssm"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets/gcpssm"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets/hashicorpvault"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets/local"
	"github.com/hashicorp/go-hclog"
)

// SetupLocalSecretsManager is a helper method for boilerplate local secrets manager setup
func SetupLocalSecretsManager(dataDir string, logger hclog.Logger) (secrets.SecretsManager, error) {
	return local.SecretsManagerFactory(
		nil, // Local secrets manager doesn't require a config
		&secrets.SecretsManagerParams{
			Logger: logger,
			Extra: map[string]interface{}{
				secrets.Path: dataDir,
			},
		},
	)
}

// InitSecretsManager returns the secrets manager described by the provided config
func InitSecretsManager(
	secretsConfig *secrets.SecretsManagerConfig, logger hclog.Logger,
) (secrets.SecretsManager, error) {
	if secretsConfig == nil {
		return nil, fmt.Errorf("secrets manager config not specified")
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	params := &secrets.SecretsManagerParams{
		Logger: logger,
	}

	switch secretsConfig.Type {
	case secrets.Local, "":
		return local.SecretsManagerFactory(secretsConfig, params)
	case secrets.HashicorpVault:
		return hashicorpvault.SecretsManagerFactory(secretsConfig, params)
	case secrets.AWSSSM:
		return awsssm.SecretsManagerFactory(secretsConfig, params)
	case secrets.GCPSSM:
		return gcpssm.SecretsManagerFactory(secretsConfig, params)
	default:
		return nil, fmt.Errorf("unsupported secrets manager: %s", secretsConfig.Type)
	}
}
