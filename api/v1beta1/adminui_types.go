package v1beta1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SecretRefSpec defines a reference to a secret published by a sibling operator
type SecretRefSpec struct {
	// Name is the name of the secret
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// Namespace is the namespace of the secret (defaults to resource namespace)
	// +optional
	Namespace *string `json:"namespace,omitempty"`
}

// ConfigMapRefSpec defines a reference to a config map published by a sibling operator
type ConfigMapRefSpec struct {
	// Name is the name of the config map
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// Namespace is the namespace of the config map (defaults to resource namespace)
	// +optional
	Namespace *string `json:"namespace,omitempty"`
}

// IngressSpec defines how the Admin UI is exposed outside the cluster
type IngressSpec struct {
	// Host is the external hostname the Admin UI is served under
	// +kubebuilder:validation:Required
	Host string `json:"host"`

	// TLSSecretName is the secret holding the serving certificate for Host
	// +optional
	TLSSecretName string `json:"tlsSecretName,omitempty"`

	// ClassName selects the ingress controller
	// +optional
	ClassName *string `json:"className,omitempty"`
}

// IntegrationsSpec wires the Admin UI to the services it depends on.
// Each reference points at data published by the owning operator of that
// service. A reference that is unset, or whose target is missing or
// incomplete, counts as an absent integration.
type IntegrationsSpec struct {
	// Database is the PostgreSQL connection secret (required)
	// +kubebuilder:validation:Required
	Database SecretRefSpec `json:"database"`

	// Kratos is the kratos-info config map (required)
	// +kubebuilder:validation:Required
	Kratos ConfigMapRefSpec `json:"kratos"`

	// Hydra is the hydra endpoints config map (required)
	// +kubebuilder:validation:Required
	Hydra ConfigMapRefSpec `json:"hydra"`

	// OpenFGA is the OpenFGA store secret (required)
	// +kubebuilder:validation:Required
	OpenFGA SecretRefSpec `json:"openfga"`

	// Oathkeeper is the oathkeeper-info config map carrying the proxy
	// endpoint and access rule locations
	// +optional
	Oathkeeper *ConfigMapRefSpec `json:"oathkeeper,omitempty"`

	// OAuth is the OAuth client secret issued by the OIDC provider.
	// When set, Ingress and CABundle are required as well.
	// +optional
	OAuth *SecretRefSpec `json:"oauth,omitempty"`

	// SMTP is the mail server secret
	// +optional
	SMTP *SecretRefSpec `json:"smtp,omitempty"`

	// Tracing is the config map holding OTLP collector endpoints
	// +optional
	Tracing *ConfigMapRefSpec `json:"tracing,omitempty"`

	// CABundle is the config map carrying the CA certificate bundle to
	// trust inside the workload container
	// +optional
	CABundle *ConfigMapRefSpec `json:"caBundle,omitempty"`
}

// AdminUISpec defines the desired state of AdminUI
type AdminUISpec struct {
	// Image is the Admin UI OCI image to run
	// +kubebuilder:validation:Required
	Image string `json:"image"`

	// LogLevel is the workload log level
	// +kubebuilder:validation:Enum=info;debug;warning;error
	// +kubebuilder:default="info"
	// +optional
	LogLevel string `json:"logLevel,omitempty"`

	// Port is the port the Admin UI listens on
	// +kubebuilder:default=8080
	// +optional
	Port int32 `json:"port,omitempty"`

	// CPU is the CPU limit for the workload container (e.g. "500m")
	// +optional
	CPU string `json:"cpu,omitempty"`

	// Memory is the memory limit for the workload container (e.g. "256Mi")
	// +optional
	Memory string `json:"memory,omitempty"`

	// Integrations wires the workload to its collaborating services
	// +kubebuilder:validation:Required
	Integrations IntegrationsSpec `json:"integrations"`

	// Ingress exposes the Admin UI outside the cluster
	// +optional
	Ingress *IngressSpec `json:"ingress,omitempty"`
}

// State values reported in AdminUIStatus
const (
	// StateBlocked means administrator action is needed before the
	// workload can be configured
	StateBlocked = "Blocked"

	// StateWaiting means a transient condition is expected to resolve
	// itself on a future event
	StateWaiting = "Waiting"

	// StateActive means the workload is fully configured and running
	StateActive = "Active"
)

// AdminUIStatus defines the observed state of AdminUI
type AdminUIStatus struct {
	// Ready indicates if the Admin UI is fully configured and serving
	Ready bool `json:"ready"`

	// State is the coarse status: Blocked, Waiting or Active
	// +optional
	State string `json:"state,omitempty"`

	// Message contains additional information about the state
	// +optional
	Message string `json:"message,omitempty"`

	// Version is the workload version reported by the Admin UI binary
	// +optional
	Version string `json:"version,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Ready",type=boolean,JSONPath=`.status.ready`,description="Whether the Admin UI is ready"
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`,description="Coarse status"
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.status.version`,description="Workload version"
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// AdminUI deploys and wires an Identity Platform Admin UI instance
type AdminUI struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AdminUISpec   `json:"spec,omitempty"`
	Status AdminUIStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AdminUIList contains a list of AdminUI
type AdminUIList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AdminUI `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AdminUI{}, &AdminUIList{})
}
