package awsssm

import (
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/secrets"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/hashicorp/go-hclog"
)

// AwsSsmManager is a SecretsManager that
// stores secrets on AWS SSM Parameter Store
type AwsSsmManager struct {
	// Local logger object
	logger hclog.Logger

	// The AWS region
	region string

	// Custom node name
	name string

	// The base path to store the secrets in SSM
	basePath string

	// The AWS SDK client
	client *ssm.SSM
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	config *secrets.SecretsManagerConfig,
	params *secrets.SecretsManagerParams,
) (secrets.SecretsManager, error) {
	// Check if the node name is present
	if config.Name == "" {
		return nil, errors.New("no node name specified for AWS SSM secrets manager")
	}

	// Check if the extra map is present
	if config.Extra == nil || config.Extra[secrets.AWSRegion] == nil || config.Extra[secrets.AWSRegion] == "" {
		return nil, errors.New("required extra map containing 'region' not found for aws-ssm")
	}

	region, ok := config.Extra[secrets.AWSRegion].(string)
	if !ok {
		return nil, fmt.Errorf("invalid aws-ssm region type: %T", config.Extra[secrets.AWSRegion])
	}

	logger := hclog.NewNullLogger()
	if params != nil && params.Logger != nil {
		logger = params.Logger
	}

	awsSsmManager := &AwsSsmManager{
		logger:   logger.Named(string(secrets.AWSSSM)),
		region:   region,
		name:     config.Name,
		basePath: fmt.Sprintf("%s/%s", config.Namespace, config.Name),
	}

	// Run the initial setup
	if err := awsSsmManager.Setup(); err != nil {
		return nil, err
	}

	return awsSsmManager, nil
}

// Setup sets up the AWS SSM secrets manager
func (a *AwsSsmManager) Setup() error {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(a.region)},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("unable to create aws session: %w", err)
	}

	a.client = ssm.New(sess)

	return nil
}

// constructSecretPath is a helper method for constructing a path to the secret
func (a *AwsSsmManager) constructSecretPath(name string) string {
	return fmt.Sprintf("%s/%s", a.basePath, name)
}

// GetSecret fetches a secret from AWS SSM
func (a *AwsSsmManager) GetSecret(name string) ([]byte, error) {
	param, err := a.client.GetParameter(&ssm.GetParameterInput{
		Name:           aws.String(a.constructSecretPath(name)),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) && awsErr.Code() == ssm.ErrCodeParameterNotFound {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
		}

		return nil, fmt.Errorf("unable to read secret from aws ssm, %w", err)
	}

	if param.Parameter == nil || param.Parameter.Value == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	return []byte(*param.Parameter.Value), nil
}

// SetSecret saves a secret to AWS SSM
func (a *AwsSsmManager) SetSecret(name string, value []byte) error {
	_, err := a.client.PutParameter(&ssm.PutParameterInput{
		Name:      aws.String(a.constructSecretPath(name)),
		Value:     aws.String(string(value)),
		Type:      aws.String(ssm.ParameterTypeSecureString),
		Overwrite: aws.Bool(false),
	})
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) && awsErr.Code() == ssm.ErrCodeParameterAlreadyExists {
			return fmt.Errorf("%w: %s", secrets.ErrSecretAlreadyExists, name)
		}

		return fmt.Errorf("unable to store secret (%s), %w", name, err)
	}

	a.logger.Debug("secret stored", "name", name)

	return nil
}

// HasSecret checks if the secret is present on AWS SSM
func (a *AwsSsmManager) HasSecret(name string) bool {
	_, err := a.GetSecret(name)

	return err == nil
}

// RemoveSecret removes a secret from AWS SSM
func (a *AwsSsmManager) RemoveSecret(name string) error {
	_, err := a.client.DeleteParameter(&ssm.DeleteParameterInput{
		Name: aws.String(a.constructSecretPath(name)),
	})
	if err != nil {
		return fmt.Errorf("unable to delete secret (%s) from aws ssm, %w", name, err)
	}

	a.logger.Debug("secret removed", "name", name)

	return nil
}
