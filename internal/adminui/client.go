// Package adminui provides an HTTP client for the Admin UI workload API and
// for validating trust in the OAuth provider.
package adminui

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"
)

// Client talks to the Admin UI workload and to OIDC discovery endpoints.
type Client struct {
	httpClient *resty.Client
	log        logr.Logger
}

// NewClient creates a new Admin UI HTTP client.
func NewClient(log logr.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(0)

	return &Client{
		httpClient: httpClient,
		log:        log.WithName("adminui-client"),
	}
}

// CheckHealth probes the workload's own health endpoint.
func (c *Client) CheckHealth(ctx context.Context, baseURL string) error {
	url := strings.TrimSuffix(baseURL, "/") + "/api/v0/status"

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("health check failed: %s", resp.Status())
	}
	return nil
}

// ValidateIssuerTrust fetches the OIDC discovery document of the OAuth
// issuer using only the transferred CA bundle as trust roots. It returns
// false when the TLS handshake cannot be verified against the bundle, which
// means the bundle does not cover the issuer's certificate chain.
func (c *Client) ValidateIssuerTrust(ctx context.Context, issuerURL string, caBundle []byte) (bool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBundle) {
		return false, fmt.Errorf("ca bundle contains no usable certificates")
	}

	url := strings.TrimSuffix(issuerURL, "/") + "/.well-known/openid-configuration"

	trusted := resty.New().
		SetTimeout(10 * time.Second).
		SetTLSClientConfig(&tls.Config{RootCAs: pool})

	resp, err := trusted.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		var verifyErr *tls.CertificateVerificationError
		var authorityErr x509.UnknownAuthorityError
		if errors.As(err, &verifyErr) || errors.As(err, &authorityErr) {
			c.log.Info("oauth issuer certificate not trusted by transferred bundle", "issuer", issuerURL)
			return false, nil
		}
		return false, fmt.Errorf("failed to reach oauth issuer: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("oauth issuer discovery failed: %s", resp.Status())
	}
	return true, nil
}
