package controller

import (
	"errors"
	"testing"

	"github.com/identity-platform/adminui-operator/internal/integrations"
	"github.com/identity-platform/adminui-operator/internal/peerdata"
	"github.com/identity-platform/adminui-operator/internal/plan"
)

// healthyInput returns an EvalInput that satisfies every precondition.
func healthyInput() EvalInput {
	return EvalInput{
		Config:    plan.Config{LogLevel: "info", Port: 8080},
		ConfigErr: nil,
		Integrations: &integrations.Snapshot{
			Database: integrations.DatabaseData{
				Endpoint: "postgres.example.com:5432",
				Database: "adminui",
				Username: "admin",
				Password: "secret",
			},
			Kratos: integrations.KratosData{
				AdminURL:  "http://kratos-admin.example.com",
				PublicURL: "http://kratos.example.com",
			},
			Hydra: integrations.HydraData{
				AdminURL: "http://hydra-admin.example.com",
			},
			OpenFGA: integrations.OpenFGAData{
				APIURL:  "http://openfga.example.com:8080",
				StoreID: "store-1",
			},
		},
		Peer: peerdata.Data{
			peerdata.KeyEncryptionKey:    "abc123",
			peerdata.KeyMigrationVersion: MinSchemaVersion,
			peerdata.KeyOpenFGAModelID:   "model-1",
		},
		ContainerReady: true,
	}
}

func TestEvaluateHealthy(t *testing.T) {
	got := Evaluate(healthyInput())
	if got.Kind != KindProceed {
		t.Fatalf("Evaluate() = %+v, want Proceed", got)
	}
}

func TestEvaluateSingleFailures(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(in *EvalInput)
		wantKind   OutcomeKind
		wantReason string
	}{
		{
			name:       "container not ready",
			mutate:     func(in *EvalInput) { in.ContainerReady = false },
			wantKind:   KindWaiting,
			wantReason: "waiting for workload container",
		},
		{
			name:       "peer state not minted",
			mutate:     func(in *EvalInput) { delete(in.Peer, peerdata.KeyEncryptionKey) },
			wantKind:   KindWaiting,
			wantReason: "waiting for peer state",
		},
		{
			name:       "invalid config",
			mutate:     func(in *EvalInput) { in.ConfigErr = errors.New(`invalid log level "verbose"`) },
			wantKind:   KindBlocked,
			wantReason: `invalid log level "verbose"`,
		},
		{
			name:       "database missing",
			mutate:     func(in *EvalInput) { in.Integrations.Database = integrations.DatabaseData{} },
			wantKind:   KindBlocked,
			wantReason: "database integration missing",
		},
		{
			name:       "kratos missing",
			mutate:     func(in *EvalInput) { in.Integrations.Kratos = integrations.KratosData{} },
			wantKind:   KindBlocked,
			wantReason: "missing required integration: kratos",
		},
		{
			name:       "hydra missing",
			mutate:     func(in *EvalInput) { in.Integrations.Hydra = integrations.HydraData{} },
			wantKind:   KindBlocked,
			wantReason: "missing required integration: hydra",
		},
		{
			name:       "openfga missing",
			mutate:     func(in *EvalInput) { in.Integrations.OpenFGA = integrations.OpenFGAData{} },
			wantKind:   KindBlocked,
			wantReason: "missing required integration: openfga",
		},
		{
			name: "oauth without ingress",
			mutate: func(in *EvalInput) {
				in.OAuthConfigured = true
				in.IngressConfigured = false
			},
			wantKind:   KindBlocked,
			wantReason: "ingress is required for oauth",
		},
		{
			name: "oauth issuer untrusted",
			mutate: func(in *EvalInput) {
				in.OAuthConfigured = true
				in.IngressConfigured = true
				in.Integrations.OAuth = integrations.OAuthData{
					IssuerURL:    "https://issuer.example.com",
					ClientID:     "admin-ui",
					ClientSecret: "secret",
				}
				in.IssuerTrusted = false
			},
			wantKind:   KindBlocked,
			wantReason: "missing trusted certificate bundle for oauth provider",
		},
		{
			name:       "openfga store not ready",
			mutate:     func(in *EvalInput) { in.Integrations.OpenFGA.StoreID = "" },
			wantKind:   KindWaiting,
			wantReason: "waiting for openfga store",
		},
		{
			name:       "openfga model not recorded",
			mutate:     func(in *EvalInput) { delete(in.Peer, peerdata.KeyOpenFGAModelID) },
			wantKind:   KindWaiting,
			wantReason: "waiting for openfga model",
		},
		{
			name:       "migration not applied",
			mutate:     func(in *EvalInput) { delete(in.Peer, peerdata.KeyMigrationVersion) },
			wantKind:   KindWaiting,
			wantReason: "waiting for database migration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := healthyInput()
			tt.mutate(&in)

			got := Evaluate(in)
			if got.Kind != tt.wantKind {
				t.Errorf("Evaluate() kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

// When several conditions fail at once, the earliest one in the list wins.
func TestEvaluateOrdering(t *testing.T) {
	in := healthyInput()
	in.ContainerReady = false
	in.Integrations.Database = integrations.DatabaseData{}
	in.ConfigErr = errors.New("bad config")

	got := Evaluate(in)
	if got.Kind != KindWaiting || got.Reason != "waiting for workload container" {
		t.Errorf("Evaluate() = %+v, want container-ready failure first", got)
	}

	in.ContainerReady = true
	got = Evaluate(in)
	if got.Kind != KindBlocked || got.Reason != "bad config" {
		t.Errorf("Evaluate() = %+v, want config failure before database", got)
	}
}

// oauth conditions only apply when an oauth client was requested.
func TestEvaluateOAuthNotConfigured(t *testing.T) {
	in := healthyInput()
	in.OAuthConfigured = false
	in.IssuerTrusted = false

	if got := Evaluate(in); got.Kind != KindProceed {
		t.Errorf("Evaluate() = %+v, want Proceed when oauth is not configured", got)
	}
}

func TestSchemaVersionAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		current string
		minimum string
		want    bool
	}{
		{name: "empty marker", current: "", minimum: "20240321.1", want: false},
		{name: "exact match", current: "20240321.1", minimum: "20240321.1", want: true},
		{name: "newer patch", current: "20240321.2", minimum: "20240321.1", want: true},
		{name: "older patch", current: "20240321.0", minimum: "20240321.1", want: false},
		{name: "newer date", current: "20250101.1", minimum: "20240321.1", want: true},
		{name: "older date", current: "20230101.9", minimum: "20240321.1", want: false},
		{name: "shorter but newer", current: "20250101", minimum: "20240321.1", want: true},
		{name: "same prefix shorter", current: "20240321", minimum: "20240321.1", want: false},
		{name: "non-numeric falls back to string compare", current: "v2", minimum: "v1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schemaVersionAtLeast(tt.current, tt.minimum); got != tt.want {
				t.Errorf("schemaVersionAtLeast(%q, %q) = %v, want %v", tt.current, tt.minimum, got, tt.want)
			}
		})
	}
}
