package gcpssm

import (
	"context"
	"errors"
	"fmt"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GCPSecretsManager is a SecretsManager that
// stores secrets on Google Cloud Secret Manager
type GCPSecretsManager struct {
	// Local logger object
	logger hclog.Logger

	// Project ID
	projectID string

	// Custom node name
	name string

	// Credentials file
	credsFilePath string

	// GCP client
	client *secretmanager.Client

	// Context used for all client calls
	context context.Context
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	// Check if the node name is present
	if config.Name == "" {
		return nil, errors.New("no node name specified for GCP secrets manager")
	}

	projectID, ok := config.Extra[secrets.GCPProjectID].(string)
	if !ok || projectID == "" {
		return nil, fmt.Errorf("required extra map containing '%s' not found for gcp-ssm", secrets.GCPProjectID)
	}

	credsFilePath, ok := config.Extra[secrets.GCPCredentialsFile].(string)
	if !ok || credsFilePath == "" {
		return nil, fmt.Errorf("required extra map containing '%s' not found for gcp-ssm", secrets.GCPCredentialsFile)
	}

	logger := hclog.NewNullLogger()
	if params != nil && params.Logger != nil {
		logger = params.Logger
	}

	gcpSsmManager := &GCPSecretsManager{
		logger:        logger.Named(string(secrets.GCPSSM)),
		projectID:     projectID,
		name:          config.Name,
		credsFilePath: credsFilePath,
		context:       context.Background(),
	}

	// Run the initial setup
	if err := gcpSsmManager.Setup(); err != nil {
		return nil, err
	}

	return gcpSsmManager, nil
}

// Setup sets up the GCP secrets manager
func (gm *GCPSecretsManager) Setup() error {
	if _, err := os.Stat(gm.credsFilePath); err != nil {
		return fmt.Errorf("unable to access gcp credentials file %s: %w", gm.credsFilePath, err)
	}

	client, err := secretmanager.NewClient(gm.context, option.WithCredentialsFile(gm.credsFilePath))
	if err != nil {
		return fmt.Errorf("unable to create gcp secret manager client: %w", err)
	}

	gm.client = client

	return nil
}

// secretID is the secret identifier within the project, prefixed with the node name
func (gm *GCPSecretsManager) secretID(name string) string {
	return fmt.Sprintf("%s-%s", gm.name, name)
}

func (gm *GCPSecretsManager) secretPath(name string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", gm.projectID, gm.secretID(name))
}

// GetSecret fetches the latest version of the secret from GCP
func (gm *GCPSecretsManager) GetSecret(name string) ([]byte, error) {
	res, err := gm.client.AccessSecretVersion(gm.context, &secretmanagerpb.AccessSecretVersionRequest{
		Name: gm.secretPath(name) + "/versions/latest",
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf("unable to read secret from gcp, %w", err)
	}

	return res.GetPayload().GetData(), nil
}

// SetSecret creates the secret and stores its first version on GCP
func (gm *GCPSecretsManager) SetSecret(name string, value []byte) error {
	secret, err := gm.client.CreateSecret(gm.context, &secretmanagerpb.CreateSecretRequest{
		Parent:   fmt.Sprintf("projects/%s", gm.projectID),
		SecretId: gm.secretID(name),
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: %s", secrets.ErrSecretAlreadyExists, name)
		}

		return fmt.Errorf("unable to create secret (%s), %w", name, err)
	}

	_, err = gm.client.AddSecretVersion(gm.context, &secretmanagerpb.AddSecretVersionRequest{
		Parent: secret.GetName(),
		Payload: &secretmanagerpb.SecretPayload{
			Data: value,
		},
	})
	if err != nil {
		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	gm.logger.Debug("secret stored", "name", name)

	return nil
}

// HasSecret checks if the secret is present on GCP
func (gm *GCPSecretsManager) HasSecret(name string) bool {
	_, err := gm.GetSecret(name)

	return err == nil
}

// RemoveSecret removes the secret with all of its versions from GCP
func (gm *GCPSecretsManager) RemoveSecret(name string) error {
	err := gm.client.DeleteSecret(gm.context, &secretmanagerpb.DeleteSecretRequest{
		Name: gm.secretPath(name),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return fmt.Errorf("unable to delete secret (%s) from gcp, %w", name, err)
	}

	gm.logger.Debug("secret removed", "name", name)

	return nil
}
