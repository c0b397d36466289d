package awsconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/core"
)

// Error codes AWS services use for bad or missing credentials and denied access.
var authErrorCodes = map[string]struct{}{ //nolint:gochecknoglobals
	"AccessDenied":                {},
	"AccessDeniedException":       {},
	"AuthFailure":                 {},
	"ExpiredToken":                {},
	"ExpiredTokenException":       {},
	"InvalidClientTokenId":        {},
	"MissingAuthenticationToken":  {},
	"SignatureDoesNotMatch":       {},
	"UnauthorizedOperation":       {},
	"UnrecognizedClientException": {},
}

// Load builds an aws.Config for profile. When running under sudo, the invoking user's
// shared config and credentials files are used instead of root's.
func Load(ctx context.Context, profile, region string, logger logrus.FieldLogger) (aws.Config, error) {
	opts := []func(*awsConfig.LoadOptions) error{}

	if profile != "" {
		opts = append(opts, awsConfig.WithSharedConfigProfile(profile))
	}

	if region != "" {
		opts = append(opts, awsConfig.WithRegion(region))
	}

	configFile, credentialsFile, ok := sudoUserFiles()
	if ok {
		logger.WithField("configFile", configFile).Debug("Using AWS files of the sudo user")

		opts = append(opts,
			awsConfig.WithSharedConfigFiles([]string{configFile}),
			awsConfig.WithSharedCredentialsFiles([]string{credentialsFile}),
		)
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		var notFound awsConfig.SharedConfigProfileNotExistError
		if errors.As(err, &notFound) {
			return aws.Config{}, fmt.Errorf("%w: AWS profile '%s' could not be found: %w", core.ErrUnauthorized, profile, err)
		}

		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}

// Classify maps AWS API errors to core errors. Authentication and authorization failures become
// core.ErrUnauthorized, everything else is wrapped into fallback.
func Classify(err error, fallback error) error {
	if err == nil {
		return nil
	}

	if IsAuthError(err) {
		return fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
	}

	return fmt.Errorf("%w: %w", fallback, err)
}

func IsAuthError(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	_, ok := authErrorCodes[apiErr.ErrorCode()]

	return ok
}

func sudoUserFiles() (string, string, bool) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" {
		return "", "", false
	}

	u, err := user.Lookup(sudoUser)
	if err != nil {
		return "", "", false
	}

	configFile := filepath.Join(u.HomeDir, ".aws", "config")
	credentialsFile := filepath.Join(u.HomeDir, ".aws", "credentials")

	if _, err := os.Stat(configFile); err != nil {
		return "", "", false
	}

	if _, err := os.Stat(credentialsFile); err != nil {
		return "", "", false
	}

	return configFile, credentialsFile, true
}
