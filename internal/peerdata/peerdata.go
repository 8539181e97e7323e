// Package peerdata is the replicated key-value state shared by all operator
// instances managing one AdminUI: a secret holding the cookie encryption key
// and the database schema migration marker. The elected leader is the only
// writer; everyone else treats the data as read-only.
package peerdata

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
	"github.com/identity-platform/adminui-operator/internal/leader"
)

// Keys in the peer state secret.
const (
	KeyEncryptionKey    = "encryption_key"
	KeyMigrationVersion = "migration_version"
	KeyOpenFGAModelID   = "openfga_model_id"
)

// ErrNotLeader is returned when a write is attempted without leadership.
// The write paths are leader-gated before any attempt, so hitting this
// error indicates a defect, not a runtime condition to recover from.
var ErrNotLeader = errors.New("peer state write attempted by non-leader")

// Data is a read-only view of the peer state at the start of a pass.
type Data map[string]string

// EncryptionKey returns the cookie encryption key, empty until minted.
func (d Data) EncryptionKey() string { return d[KeyEncryptionKey] }

// MigrationVersion returns the applied schema version marker.
func (d Data) MigrationVersion() string { return d[KeyMigrationVersion] }

// OpenFGAModelID returns the recorded authorization model id.
func (d Data) OpenFGAModelID() string { return d[KeyOpenFGAModelID] }

// Store reads and writes the peer state secret of an AdminUI.
type Store struct {
	client client.Client
	leader leader.Checker
}

// NewStore creates a peer state store. Writes succeed only while the given
// checker reports leadership.
func NewStore(c client.Client, l leader.Checker) *Store {
	return &Store{client: c, leader: l}
}

// SecretName returns the peer state secret name for an AdminUI.
func SecretName(ui *adminuiv1beta1.AdminUI) string {
	return ui.Name + "-peer-state"
}

// Get returns the current peer state. A missing secret is an empty state,
// not an error.
func (s *Store) Get(ctx context.Context, ui *adminuiv1beta1.AdminUI) (Data, error) {
	secret := &corev1.Secret{}
	key := types.NamespacedName{Name: SecretName(ui), Namespace: ui.Namespace}
	if err := s.client.Get(ctx, key, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return Data{}, nil
		}
		return nil, fmt.Errorf("failed to read peer state: %w", err)
	}

	data := make(Data, len(secret.Data))
	for k, v := range secret.Data {
		data[k] = string(v)
	}
	return data, nil
}

// Set writes one key into the peer state, creating the secret on first
// write. Only the leader may call this.
func (s *Store) Set(ctx context.Context, ui *adminuiv1beta1.AdminUI, key, value string) error {
	if !s.leader.IsLeader() {
		return ErrNotLeader
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      SecretName(ui),
			Namespace: ui.Namespace,
		},
	}

	_, err := controllerutil.CreateOrUpdate(ctx, s.client, secret, func() error {
		if secret.Data == nil {
			secret.Data = map[string][]byte{}
		}
		secret.Data[key] = []byte(value)
		return controllerutil.SetControllerReference(ui, secret, s.client.Scheme())
	})
	if err != nil {
		return fmt.Errorf("failed to write peer state key %q: %w", key, err)
	}
	return nil
}

// EnsureEncryptionKey mints the cookie encryption key on first leadership.
// Subsequent calls are no-ops. Non-leaders never attempt the write.
func (s *Store) EnsureEncryptionKey(ctx context.Context, ui *adminuiv1beta1.AdminUI) error {
	if !s.leader.IsLeader() {
		return nil
	}

	data, err := s.Get(ctx, ui)
	if err != nil {
		return err
	}
	if data.EncryptionKey() != "" {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return s.Set(ctx, ui, KeyEncryptionKey, hex.EncodeToString(raw))
}
