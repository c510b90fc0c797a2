// Package rdsauth builds short-lived RDS IAM authentication tokens that are
// used in place of a database password.
package rdsauth

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
)

// BuildFunc matches auth.BuildAuthToken.
type BuildFunc func(ctx context.Context, endpoint, region, dbUser string, creds aws.CredentialsProvider, optFns ...func(*auth.BuildAuthTokenOptions)) (string, error)

// TokenProvider acquires IAM tokens using the credentials of an aws.Config.
// Tokens are valid for 15 minutes, so one is built per connection attempt.
type TokenProvider struct {
	cfg   aws.Config
	build BuildFunc
}

// NewTokenProvider returns a provider bound to cfg's region and credentials.
func NewTokenProvider(cfg aws.Config) *TokenProvider {
	return &TokenProvider{cfg: cfg, build: auth.BuildAuthToken}
}

// Token returns a token for user at host:port.
func (p *TokenProvider) Token(ctx context.Context, host string, port int, user string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("rdsauth: IAM auth requires a host")
	}
	if user == "" {
		return "", fmt.Errorf("rdsauth: IAM auth requires a database user")
	}
	if p.cfg.Region == "" {
		return "", fmt.Errorf("rdsauth: IAM auth requires a region (set AWS_REGION)")
	}
	if p.cfg.Credentials == nil {
		return "", fmt.Errorf("rdsauth: no AWS credentials configured")
	}

	endpoint := net.JoinHostPort(host, strconv.Itoa(port))
	token, err := p.build(ctx, endpoint, p.cfg.Region, user, p.cfg.Credentials)
	if err != nil {
		return "", fmt.Errorf("rdsauth: build token for %s@%s: %w", user, endpoint, err)
	}
	return token, nil
}
