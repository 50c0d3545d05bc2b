package secrets

import (
	"errors"

	"github.com/hashicorp/go-hclog"
)

// Define constant names for available secrets
const (
	// WalletKeyPrefix is the prefix of names under which wallet keystores are stored
	WalletKeyPrefix = "wallet_"

	// OtherKeyPrefix is the prefix of names of arbitrary secrets (api keys, passwords...)
	OtherKeyPrefix = "other_"
)

// Define constant folder and file names for the local SecretsManager
const (
	WalletFolderLocal = "wallets"
	OtherFolderLocal  = "other"

	// WalletFileExtLocal is the extension of a keystore file stored by the local SecretsManager
	WalletFileExtLocal = ".json"
)

// Keys of the SecretsManagerParams.Extra and SecretsManagerConfig.Extra maps
const (
	// Path is the local SecretsManager base directory
	Path = "path"

	// AWSRegion is the AWS region of the SSM parameter store
	AWSRegion = "region"

	// GCPProjectID is the Google Cloud project which owns the secrets
	GCPProjectID = "project-id"

	// GCPCredentialsFile is the path of the Google Cloud service account json
	GCPCredentialsFile = "gcp-ssm-cred"
)

var (
	// ErrSecretNotFound is returned when the secret isn't present in the SecretsManager
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretAlreadyExists is returned when the secret is already initialized
	ErrSecretAlreadyExists = errors.New("secret already exists")
)

type SecretsManagerType string

const (
	// Local pertains to the local SecretsManager
	Local SecretsManagerType = "local"

	// HashicorpVault pertains to the Hashicorp Vault server
	HashicorpVault SecretsManagerType = "hashicorp-vault"

	// AWSSSM pertains to AWS SSM using Parameter Store
	AWSSSM SecretsManagerType = "aws-ssm"

	// GCPSSM pertains to the Google Cloud Computing secret store manager
	GCPSSM SecretsManagerType = "gcp-ssm"
)

// SecretsManager defines the base public interface that all
// secret manager implementations should have
type SecretsManager interface {
	// Setup performs secret manager-specific setup
	Setup() error

	// GetSecret gets the secret by name
	GetSecret(name string) ([]byte, error)

	// SetSecret sets the secret to a provided value
	SetSecret(name string, value []byte) error

	// HasSecret checks if the secret is present
	HasSecret(name string) bool

	// RemoveSecret removes the secret from storage
	RemoveSecret(name string) error
}

// SecretsManagerParams defines the configuration params for the
// secrets manager
type SecretsManagerParams struct {
	// Logger object
	Logger hclog.Logger

	// Extra contains additional data needed for the SecretsManager to function
	Extra map[string]interface{}
}

// SupportedServiceManager checks if the passed in service manager type is supported
func SupportedServiceManager(service SecretsManagerType) bool {
	return service == HashicorpVault ||
		service == AWSSSM ||
		service == GCPSSM ||
		service == Local
}

// WalletSecretName returns the secret name under which keystore of the named wallet is stored
func WalletSecretName(name string) string {
	return WalletKeyPrefix + name
}
