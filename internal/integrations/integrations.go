// Package integrations loads typed snapshots of the data published by the
// services the Admin UI collaborates with. Every record is either fully
// present or absent: partial or malformed source data is treated as absent.
package integrations

import (
	"fmt"
	"net/url"
)

// DatabaseData is the PostgreSQL connection info for the Admin UI.
type DatabaseData struct {
	Endpoint string
	Database string
	Username string
	Password string
}

// Present reports whether the database integration is usable.
func (d DatabaseData) Present() bool {
	return d.Endpoint != "" && d.Database != "" && d.Username != "" && d.Password != ""
}

// DSN returns the PostgreSQL connection string for the workload.
func (d DatabaseData) DSN() string {
	if !d.Present() {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s", d.Username, d.Password, d.Endpoint, d.Database)
}

// EnvVars returns the environment variables contributed by the database integration.
func (d DatabaseData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"DSN": d.DSN(),
	}
}

// KratosData is the endpoint info published by the Kratos operator.
type KratosData struct {
	AdminURL             string
	PublicURL            string
	IDPConfigMapName     string
	SchemasConfigMapName string
	ConfigMapsNamespace  string
}

// Present reports whether the Kratos integration is usable.
func (d KratosData) Present() bool {
	return d.AdminURL != "" && d.PublicURL != ""
}

// EnvVars returns the environment variables contributed by the Kratos integration.
func (d KratosData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"KRATOS_ADMIN_URL":            d.AdminURL,
		"KRATOS_PUBLIC_URL":           d.PublicURL,
		"IDP_CONFIGMAP_NAME":          d.IDPConfigMapName,
		"IDP_CONFIGMAP_NAMESPACE":     d.ConfigMapsNamespace,
		"SCHEMAS_CONFIGMAP_NAME":      d.SchemasConfigMapName,
		"SCHEMAS_CONFIGMAP_NAMESPACE": d.ConfigMapsNamespace,
	}
}

// HydraData is the endpoint info published by the Hydra operator.
type HydraData struct {
	AdminURL string
}

// Present reports whether the Hydra integration is usable.
func (d HydraData) Present() bool {
	return d.AdminURL != ""
}

// EnvVars returns the environment variables contributed by the Hydra integration.
func (d HydraData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"HYDRA_ADMIN_URL": d.AdminURL,
	}
}

// OathkeeperData is the proxy info published by the Oathkeeper operator.
type OathkeeperData struct {
	PublicURL           string
	RulesConfigMapName  string
	ConfigMapsNamespace string
}

// Present reports whether the Oathkeeper integration is usable.
func (d OathkeeperData) Present() bool {
	return d.PublicURL != ""
}

// EnvVars returns the environment variables contributed by the Oathkeeper integration.
func (d OathkeeperData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"OATHKEEPER_PUBLIC_URL":     d.PublicURL,
		"RULES_CONFIGMAP_NAME":      d.RulesConfigMapName,
		"RULES_CONFIGMAP_NAMESPACE": d.ConfigMapsNamespace,
	}
}

// OpenFGAData is the store info published by the OpenFGA operator.
type OpenFGAData struct {
	APIURL   string
	APIToken string
	StoreID  string
}

// Present reports whether the OpenFGA integration is usable.
func (d OpenFGAData) Present() bool {
	return d.APIURL != "" && d.StoreID != ""
}

// APIScheme returns the scheme of the OpenFGA API URL.
func (d OpenFGAData) APIScheme() string {
	u, err := url.Parse(d.APIURL)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// APIHost returns the host of the OpenFGA API URL.
func (d OpenFGAData) APIHost() string {
	u, err := url.Parse(d.APIURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// EnvVars returns the environment variables contributed by the OpenFGA integration.
func (d OpenFGAData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"OPENFGA_STORE_ID":   d.StoreID,
		"OPENFGA_API_TOKEN":  d.APIToken,
		"OPENFGA_API_SCHEME": d.APIScheme(),
		"OPENFGA_API_HOST":   d.APIHost(),
	}
}

// OAuthData is the client info issued by the OIDC provider.
type OAuthData struct {
	IssuerURL      string
	ClientID       string
	ClientSecret   string
	JWTAccessToken bool
}

// Present reports whether the OAuth client has been issued.
func (d OAuthData) Present() bool {
	return d.IssuerURL != "" && d.ClientID != "" && d.ClientSecret != ""
}

// VerificationStrategy returns how access tokens should be verified.
func (d OAuthData) VerificationStrategy() string {
	if d.JWTAccessToken {
		return "jwks"
	}
	return "userinfo"
}

// SMTPData is the mail server info for outgoing mail.
type SMTPData struct {
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
}

// Present reports whether the SMTP integration is usable.
func (d SMTPData) Present() bool {
	return d.Host != "" && d.Port != ""
}

// EnvVars returns the environment variables contributed by the SMTP integration.
func (d SMTPData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"MAIL_HOST":         d.Host,
		"MAIL_PORT":         d.Port,
		"MAIL_USERNAME":     d.Username,
		"MAIL_PASSWORD":     d.Password,
		"MAIL_FROM_ADDRESS": d.FromAddress,
	}
}

// TracingData holds the OTLP collector endpoints.
type TracingData struct {
	HTTPEndpoint string
	GRPCEndpoint string
}

// Present reports whether tracing is available.
func (d TracingData) Present() bool {
	return d.HTTPEndpoint != "" || d.GRPCEndpoint != ""
}

// EnvVars returns the environment variables contributed by the tracing integration.
func (d TracingData) EnvVars() map[string]string {
	if !d.Present() {
		return nil
	}
	return map[string]string{
		"TRACING_ENABLED":    "true",
		"OTEL_HTTP_ENDPOINT": d.HTTPEndpoint,
		"OTEL_GRPC_ENDPOINT": d.GRPCEndpoint,
	}
}

// CABundleData is the CA certificate bundle to trust inside the workload.
type CABundleData struct {
	Bundle string
}

// Present reports whether a CA bundle has been transferred.
func (d CABundleData) Present() bool {
	return d.Bundle != ""
}

// Snapshot bundles all integration data read at the start of a
// reconciliation pass. It is never mutated, only replaced.
type Snapshot struct {
	Database   DatabaseData
	Kratos     KratosData
	Hydra      HydraData
	Oathkeeper OathkeeperData
	OpenFGA    OpenFGAData
	OAuth      OAuthData
	SMTP       SMTPData
	Tracing    TracingData
	CABundle   CABundleData
}
