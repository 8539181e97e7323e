package controller

import (
	"strconv"
	"strings"

	"github.com/identity-platform/adminui-operator/internal/integrations"
	"github.com/identity-platform/adminui-operator/internal/peerdata"
	"github.com/identity-platform/adminui-operator/internal/plan"
)

// OutcomeKind classifies the result of evaluating the preconditions.
type OutcomeKind int

const (
	// KindProceed means every precondition holds and the desired plan may
	// be applied.
	KindProceed OutcomeKind = iota

	// KindBlocked means administrator action is required; no future event
	// will resolve the condition on its own.
	KindBlocked

	// KindWaiting means the condition is expected to resolve itself from
	// a future event; do nothing now and re-evaluate then.
	KindWaiting
)

// Outcome is the tagged result of one evaluation pass.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Proceed is the all-clear outcome.
var Proceed = Outcome{Kind: KindProceed}

// EvalInput is the snapshot the preconditions are evaluated against. It is
// assembled fresh on every pass and never mutated.
type EvalInput struct {
	Config    plan.Config
	ConfigErr error

	Integrations *integrations.Snapshot
	Peer         peerdata.Data

	// OAuthConfigured and IngressConfigured reflect the spec, not the
	// loaded data: an administrator asked for them.
	OAuthConfigured   bool
	IngressConfigured bool

	// IssuerTrusted is the result of validating the OAuth issuer chain
	// against the transferred CA bundle.
	IssuerTrusted bool

	ContainerReady bool
}

// precondition is one entry of the ordered evaluation list. Order is a
// contract: the first failing condition determines the reported status, so
// conditions run from most fundamental to most specific.
type precondition struct {
	name   string
	ok     func(in EvalInput) bool
	kind   OutcomeKind
	reason func(in EvalInput) string
}

func staticReason(s string) func(EvalInput) string {
	return func(EvalInput) string { return s }
}

var preconditions = []precondition{
	{
		name:   "container-ready",
		ok:     func(in EvalInput) bool { return in.ContainerReady },
		kind:   KindWaiting,
		reason: staticReason("waiting for workload container"),
	},
	{
		name:   "peer-state-ready",
		ok:     func(in EvalInput) bool { return in.Peer.EncryptionKey() != "" },
		kind:   KindWaiting,
		reason: staticReason("waiting for peer state"),
	},
	{
		name:   "config-valid",
		ok:     func(in EvalInput) bool { return in.ConfigErr == nil },
		kind:   KindBlocked,
		reason: func(in EvalInput) string { return in.ConfigErr.Error() },
	},
	{
		name:   "database-present",
		ok:     func(in EvalInput) bool { return in.Integrations.Database.Present() },
		kind:   KindBlocked,
		reason: staticReason("database integration missing"),
	},
	{
		name:   "kratos-present",
		ok:     func(in EvalInput) bool { return in.Integrations.Kratos.Present() },
		kind:   KindBlocked,
		reason: staticReason("missing required integration: kratos"),
	},
	{
		name:   "hydra-present",
		ok:     func(in EvalInput) bool { return in.Integrations.Hydra.Present() },
		kind:   KindBlocked,
		reason: staticReason("missing required integration: hydra"),
	},
	{
		name:   "openfga-present",
		ok:     func(in EvalInput) bool { return in.Integrations.OpenFGA.APIURL != "" },
		kind:   KindBlocked,
		reason: staticReason("missing required integration: openfga"),
	},
	{
		name: "oauth-has-ingress",
		ok: func(in EvalInput) bool {
			return !in.OAuthConfigured || in.IngressConfigured
		},
		kind:   KindBlocked,
		reason: staticReason("ingress is required for oauth"),
	},
	{
		name: "oauth-issuer-trusted",
		ok: func(in EvalInput) bool {
			if !in.OAuthConfigured || !in.Integrations.OAuth.Present() {
				return true
			}
			return in.Integrations.CABundle.Present() && in.IssuerTrusted
		},
		kind:   KindBlocked,
		reason: staticReason("missing trusted certificate bundle for oauth provider"),
	},
	{
		name:   "openfga-store-ready",
		ok:     func(in EvalInput) bool { return in.Integrations.OpenFGA.StoreID != "" },
		kind:   KindWaiting,
		reason: staticReason("waiting for openfga store"),
	},
	{
		name:   "openfga-model-ready",
		ok:     func(in EvalInput) bool { return in.Peer.OpenFGAModelID() != "" },
		kind:   KindWaiting,
		reason: staticReason("waiting for openfga model"),
	},
	{
		name: "migration-applied",
		ok: func(in EvalInput) bool {
			return schemaVersionAtLeast(in.Peer.MigrationVersion(), MinSchemaVersion)
		},
		kind:   KindWaiting,
		reason: staticReason("waiting for database migration"),
	},
}

// Evaluate runs the ordered precondition list and returns the first failing
// condition's outcome, or Proceed when every condition holds. It is a pure
// function of its input.
func Evaluate(in EvalInput) Outcome {
	for _, c := range preconditions {
		if !c.ok(in) {
			return Outcome{Kind: c.kind, Reason: c.reason(in)}
		}
	}
	return Proceed
}

// schemaVersionAtLeast reports whether the applied schema version marker is
// at or above the minimum. Markers are dotted numeric strings; when they
// cannot be parsed, a plain string comparison decides.
func schemaVersionAtLeast(current, minimum string) bool {
	if current == "" {
		return false
	}
	if current == minimum {
		return true
	}

	curParts := strings.Split(current, ".")
	minParts := strings.Split(minimum, ".")
	for i := 0; i < len(curParts) && i < len(minParts); i++ {
		c, errC := strconv.Atoi(curParts[i])
		m, errM := strconv.Atoi(minParts[i])
		if errC != nil || errM != nil {
			return current >= minimum
		}
		if c != m {
			return c > m
		}
	}
	return len(curParts) >= len(minParts)
}
