package remote

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"

	gqlhttp "github.com/jkrebs-tr/graphqlLambda/http"
)

// AppSyncService is the SigV4 signing name of AWS AppSync.
const AppSyncService = "appsync"

// SessionCredentials resolves credentials through the default AWS credential chain
// (environment variables, shared config, the function's execution role, ...).
//
// Parameters:
//   - region: AWS region of the upstream endpoint. Defaults to "us-east-1" when empty.
func SessionCredentials(region string) (*credentials.Credentials, error) {
	if region == "" {
		region = "us-east-1"
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return sess.Config.Credentials, nil
}

// NewSigV4Signer signs upstream requests with AWS Signature Version 4.
//
// Example usage:
//
//	creds, err := SessionCredentials("eu-west-1")
//	if err != nil {
//		return err
//	}
//	exec := New(url, WithSigner(NewSigV4Signer(creds, "eu-west-1", AppSyncService)))
func NewSigV4Signer(creds *credentials.Credentials, region, service string) gqlhttp.Signer {
	signer := v4.NewSigner(creds)
	return func(req *http.Request, body []byte) error {
		if _, err := signer.Sign(req, bytes.NewReader(body), service, region, time.Now()); err != nil {
			return fmt.Errorf("failed to sign request: %w", err)
		}
		return nil
	}
}
