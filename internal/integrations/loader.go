package integrations

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
)

// Well-known keys in the secrets and config maps published by sibling operators.
const (
	databaseEndpointKey = "endpoints"
	databaseNameKey     = "database"
	databaseUsernameKey = "username"
	databasePasswordKey = "password"

	kratosAdminURLKey         = "admin_endpoint"
	kratosPublicURLKey        = "public_endpoint"
	kratosIDPConfigMapKey     = "providers_configmap_name"
	kratosSchemasConfigMapKey = "schemas_configmap_name"
	kratosNamespaceKey        = "configmaps_namespace"

	hydraAdminURLKey = "admin_endpoint"

	oathkeeperPublicURLKey      = "public_endpoint"
	oathkeeperRulesConfigMapKey = "rules_configmap_name"
	oathkeeperNamespaceKey      = "configmaps_namespace"

	openfgaAPIURLKey  = "http_api_url"
	openfgaTokenKey   = "token"
	openfgaStoreIDKey = "store_id"

	oauthIssuerURLKey      = "issuer_url"
	oauthClientIDKey       = "client_id"
	oauthClientSecretKey   = "client_secret"
	oauthJWTAccessTokenKey = "jwt_access_token"

	smtpHostKey        = "host"
	smtpPortKey        = "port"
	smtpUsernameKey    = "username"
	smtpPasswordKey    = "password"
	smtpFromAddressKey = "from_address"

	tracingHTTPEndpointKey = "otlp_http_endpoint"
	tracingGRPCEndpointKey = "otlp_grpc_endpoint"

	caBundleKey = "ca-certificates.crt"
)

// Loader reads integration data from the cluster and assembles a Snapshot.
type Loader struct {
	reader client.Reader
}

// NewLoader creates a Loader backed by the given reader.
func NewLoader(reader client.Reader) *Loader {
	return &Loader{reader: reader}
}

// Load builds a fresh Snapshot for one reconciliation pass. A missing or
// incomplete source is recorded as an absent integration, not an error;
// only infrastructure failures reading the cluster are returned.
func (l *Loader) Load(ctx context.Context, ui *adminuiv1beta1.AdminUI) (*Snapshot, error) {
	snap := &Snapshot{}

	db, err := l.secretData(ctx, ui.Namespace, &ui.Spec.Integrations.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to read database secret: %w", err)
	}
	snap.Database = DatabaseData{
		Endpoint: db[databaseEndpointKey],
		Database: db[databaseNameKey],
		Username: db[databaseUsernameKey],
		Password: db[databasePasswordKey],
	}

	kratos, err := l.configMapData(ctx, ui.Namespace, &ui.Spec.Integrations.Kratos)
	if err != nil {
		return nil, fmt.Errorf("failed to read kratos config map: %w", err)
	}
	snap.Kratos = KratosData{
		AdminURL:             kratos[kratosAdminURLKey],
		PublicURL:            kratos[kratosPublicURLKey],
		IDPConfigMapName:     kratos[kratosIDPConfigMapKey],
		SchemasConfigMapName: kratos[kratosSchemasConfigMapKey],
		ConfigMapsNamespace:  kratos[kratosNamespaceKey],
	}

	hydra, err := l.configMapData(ctx, ui.Namespace, &ui.Spec.Integrations.Hydra)
	if err != nil {
		return nil, fmt.Errorf("failed to read hydra config map: %w", err)
	}
	snap.Hydra = HydraData{
		AdminURL: hydra[hydraAdminURLKey],
	}

	if ref := ui.Spec.Integrations.Oathkeeper; ref != nil {
		oathkeeper, err := l.configMapData(ctx, ui.Namespace, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read oathkeeper config map: %w", err)
		}
		snap.Oathkeeper = OathkeeperData{
			PublicURL:           oathkeeper[oathkeeperPublicURLKey],
			RulesConfigMapName:  oathkeeper[oathkeeperRulesConfigMapKey],
			ConfigMapsNamespace: oathkeeper[oathkeeperNamespaceKey],
		}
	}

	openfga, err := l.secretData(ctx, ui.Namespace, &ui.Spec.Integrations.OpenFGA)
	if err != nil {
		return nil, fmt.Errorf("failed to read openfga secret: %w", err)
	}
	snap.OpenFGA = OpenFGAData{
		APIURL:   openfga[openfgaAPIURLKey],
		APIToken: openfga[openfgaTokenKey],
		StoreID:  openfga[openfgaStoreIDKey],
	}

	if ref := ui.Spec.Integrations.OAuth; ref != nil {
		oauth, err := l.secretData(ctx, ui.Namespace, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read oauth secret: %w", err)
		}
		snap.OAuth = OAuthData{
			IssuerURL:      oauth[oauthIssuerURLKey],
			ClientID:       oauth[oauthClientIDKey],
			ClientSecret:   oauth[oauthClientSecretKey],
			JWTAccessToken: oauth[oauthJWTAccessTokenKey] == "true",
		}
	}

	if ref := ui.Spec.Integrations.SMTP; ref != nil {
		smtp, err := l.secretData(ctx, ui.Namespace, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read smtp secret: %w", err)
		}
		snap.SMTP = SMTPData{
			Host:        smtp[smtpHostKey],
			Port:        smtp[smtpPortKey],
			Username:    smtp[smtpUsernameKey],
			Password:    smtp[smtpPasswordKey],
			FromAddress: smtp[smtpFromAddressKey],
		}
	}

	if ref := ui.Spec.Integrations.Tracing; ref != nil {
		tracing, err := l.configMapData(ctx, ui.Namespace, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read tracing config map: %w", err)
		}
		snap.Tracing = TracingData{
			HTTPEndpoint: tracing[tracingHTTPEndpointKey],
			GRPCEndpoint: tracing[tracingGRPCEndpointKey],
		}
	}

	if ref := ui.Spec.Integrations.CABundle; ref != nil {
		ca, err := l.configMapData(ctx, ui.Namespace, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca bundle config map: %w", err)
		}
		snap.CABundle = CABundleData{
			Bundle: ca[caBundleKey],
		}
	}

	return snap, nil
}

// secretData returns the secret's data as strings, or an empty map when the
// secret does not exist.
func (l *Loader) secretData(ctx context.Context, defaultNamespace string, ref *adminuiv1beta1.SecretRefSpec) (map[string]string, error) {
	namespace := defaultNamespace
	if ref.Namespace != nil {
		namespace = *ref.Namespace
	}

	secret := &corev1.Secret{}
	key := types.NamespacedName{Name: ref.Name, Namespace: namespace}
	if err := l.reader.Get(ctx, key, secret); err != nil {
		if errors.IsNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	data := make(map[string]string, len(secret.Data))
	for k, v := range secret.Data {
		data[k] = string(v)
	}
	return data, nil
}

// configMapData returns the config map's data, or an empty map when the
// config map does not exist.
func (l *Loader) configMapData(ctx context.Context, defaultNamespace string, ref *adminuiv1beta1.ConfigMapRefSpec) (map[string]string, error) {
	namespace := defaultNamespace
	if ref.Namespace != nil {
		namespace = *ref.Namespace
	}

	cm := &corev1.ConfigMap{}
	key := types.NamespacedName{Name: ref.Name, Namespace: namespace}
	if err := l.reader.Get(ctx, key, cm); err != nil {
		if errors.IsNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	return cm.Data, nil
}
