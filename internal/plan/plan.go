package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/identity-platform/adminui-operator/internal/integrations"
)

// Workload constants shared with the in-container CLI.
const (
	// BinaryPath is the Admin UI binary inside the workload image
	BinaryPath = "/usr/bin/identity-platform-admin-ui"

	// HealthPath is the workload's own health endpoint
	HealthPath = "/api/v0/status"

	// MetricsPath is the workload's Prometheus endpoint
	MetricsPath = "/api/v0/metrics"

	// OAuthCallbackPath is the redirect path registered with the OIDC provider
	OAuthCallbackPath = "api/v0/auth/callback"

	// OAuthScopes are the scopes requested for the Admin UI OAuth client
	OAuthScopes = "openid,email,profile,offline_access"

	// CACertMountPath is where the transferred CA bundle is mounted
	CACertMountPath = "/etc/ssl/certs"
)

// defaultEnv is the environment baseline for the workload. Integration and
// configuration values are layered on top.
var defaultEnv = map[string]string{
	"AUTHENTICATION_ENABLED":         "false",
	"AUTHORIZATION_ENABLED":          "true",
	"OPENFGA_AUTHORIZATION_MODEL_ID": "",
	"OPENFGA_STORE_ID":               "",
	"OPENFGA_API_TOKEN":              "",
	"OPENFGA_API_SCHEME":             "",
	"OPENFGA_API_HOST":               "",
	"KRATOS_ADMIN_URL":               "",
	"KRATOS_PUBLIC_URL":              "",
	"HYDRA_ADMIN_URL":                "",
	"OATHKEEPER_PUBLIC_URL":          "",
	"RULES_CONFIGMAP_NAME":           "",
	"RULES_CONFIGMAP_NAMESPACE":      "",
	"IDP_CONFIGMAP_NAME":             "",
	"IDP_CONFIGMAP_NAMESPACE":        "",
	"SCHEMAS_CONFIGMAP_NAME":         "",
	"SCHEMAS_CONFIGMAP_NAMESPACE":    "",
	"TRACING_ENABLED":                "false",
	"OTEL_HTTP_ENDPOINT":             "",
	"OTEL_GRPC_ENDPOINT":             "",
	"LOG_LEVEL":                      "INFO",
	"DEBUG":                          "false",
}

// Inputs is everything the planner needs to compute a ServicePlan. Invalid
// inputs are rejected earlier by the precondition evaluator; Build is total.
type Inputs struct {
	Image        string
	Config       Config
	Integrations *integrations.Snapshot

	// BaseURL is the externally visible URL of the Admin UI: the ingress
	// URL when exposed, the in-cluster service URL otherwise.
	BaseURL string

	// OpenFGAModelID is the authorization model recorded in peer state.
	OpenFGAModelID string

	// CACertConfigMap, when non-empty, names the config map whose CA
	// bundle is mounted into the workload's certificate directory.
	CACertConfigMap string
}

// ServicePlan is the declarative description of the workload process, its
// environment and health checks. It is derived, never stored; identical
// Inputs produce byte-identical plans.
type ServicePlan struct {
	Image           string            `json:"image"`
	Command         []string          `json:"command"`
	Port            int32             `json:"port"`
	Env             map[string]string `json:"env"`
	HealthPath      string            `json:"healthPath"`
	CPU             string            `json:"cpu,omitempty"`
	Memory          string            `json:"memory,omitempty"`
	CACertConfigMap string            `json:"caCertConfigMap,omitempty"`
}

// Build merges the configuration and integration snapshots into the desired
// service plan. Key collisions resolve by fixed precedence: explicit
// configuration wins over relation-derived values, which win over defaults.
func Build(in Inputs) ServicePlan {
	env := make(map[string]string, len(defaultEnv)+16)
	for k, v := range defaultEnv {
		env[k] = v
	}

	snap := in.Integrations
	for _, vars := range []map[string]string{
		snap.Database.EnvVars(),
		snap.Kratos.EnvVars(),
		snap.Hydra.EnvVars(),
		snap.Oathkeeper.EnvVars(),
		snap.OpenFGA.EnvVars(),
		snap.SMTP.EnvVars(),
		snap.Tracing.EnvVars(),
	} {
		for k, v := range vars {
			env[k] = v
		}
	}

	env["BASE_URL"] = in.BaseURL
	env["OPENFGA_AUTHORIZATION_MODEL_ID"] = in.OpenFGAModelID

	if snap.OAuth.Present() {
		env["AUTHENTICATION_ENABLED"] = "true"
		env["OIDC_ISSUER"] = snap.OAuth.IssuerURL
		env["OAUTH2_CLIENT_ID"] = snap.OAuth.ClientID
		env["OAUTH2_CLIENT_SECRET"] = snap.OAuth.ClientSecret
		env["OAUTH2_REDIRECT_URI"] = fmt.Sprintf("%s/%s", in.BaseURL, OAuthCallbackPath)
		env["OAUTH2_CODEGRANT_SCOPES"] = OAuthScopes
		env["ACCESS_TOKEN_VERIFICATION_STRATEGY"] = snap.OAuth.VerificationStrategy()
	}

	// Configuration wins over anything relation-derived.
	for k, v := range in.Config.EnvVars() {
		env[k] = v
	}

	return ServicePlan{
		Image:           in.Image,
		Command:         []string{BinaryPath, "serve"},
		Port:            in.Config.Port,
		Env:             env,
		HealthPath:      HealthPath,
		CPU:             in.Config.CPU,
		Memory:          in.Config.Memory,
		CACertConfigMap: in.CACertConfigMap,
	}
}

// Default returns the bootstrap plan used before any integration data is
// available, so the workload container exists and can accept exec sessions.
func Default(image string) ServicePlan {
	env := make(map[string]string, len(defaultEnv))
	for k, v := range defaultEnv {
		env[k] = v
	}
	env["PORT"] = strconv.Itoa(DefaultPort)

	return ServicePlan{
		Image:      image,
		Command:    []string{BinaryPath, "serve"},
		Port:       DefaultPort,
		Env:        env,
		HealthPath: HealthPath,
	}
}

// Hash returns a stable digest of the plan. The env map marshals with
// sorted keys, so equal plans hash equal and the controller can skip
// re-applying an unchanged plan.
func (p ServicePlan) Hash() string {
	raw, err := json.Marshal(p)
	if err != nil {
		// ServicePlan contains only marshalable types; this cannot happen.
		panic(fmt.Sprintf("service plan not marshalable: %v", err))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
