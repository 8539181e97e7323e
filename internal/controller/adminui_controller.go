package controller

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
	"github.com/identity-platform/adminui-operator/internal/integrations"
	"github.com/identity-platform/adminui-operator/internal/leader"
	"github.com/identity-platform/adminui-operator/internal/peerdata"
	"github.com/identity-platform/adminui-operator/internal/plan"
	"github.com/identity-platform/adminui-operator/internal/workload"
)

const (
	// RetryDelay is the requeue delay while a transient condition resolves
	RetryDelay = 30 * time.Second

	// MinSchemaVersion is the minimum database schema version this
	// operator's workload requires. Migration runs record this marker.
	MinSchemaVersion = "20240321.1"

	// MigrationTimeout bounds the automatic migrate-up run
	MigrationTimeout = 2 * time.Minute
)

// TrustChecker validates that the OAuth issuer's certificate chain is
// covered by the transferred CA bundle.
type TrustChecker interface {
	ValidateIssuerTrust(ctx context.Context, issuerURL string, caBundle []byte) (bool, error)
}

// HealthChecker probes the workload's own health endpoint.
type HealthChecker interface {
	CheckHealth(ctx context.Context, baseURL string) error
}

// AdminUIReconciler reconciles an AdminUI object. One pass runs to
// completion per event; the manager delivers events for a given object
// strictly sequentially, so no internal locking is needed.
type AdminUIReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	// Leader gates every peer state write.
	Leader leader.Checker

	// Trust validates the OAuth issuer against the CA bundle.
	Trust TrustChecker

	// Health confirms the workload answers on its status endpoint before
	// the resource is reported Active.
	Health HealthChecker

	// NewSupervisor builds the container supervisor for one AdminUI.
	NewSupervisor func(ui *adminuiv1beta1.AdminUI) workload.Supervisor
}

// +kubebuilder:rbac:groups=adminui.identity-platform.io,resources=adminuis,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=adminui.identity-platform.io,resources=adminuis/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=apps,resources=deployments,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=secrets;configmaps;services,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=pods/exec,verbs=create
// +kubebuilder:rbac:groups=networking.k8s.io,resources=ingresses,verbs=get;list;watch;create;update;patch;delete

// Reconcile recomputes the desired state of one AdminUI from scratch. Every
// triggering event funnels here: evaluate the preconditions against a fresh
// snapshot, and only on a Proceed outcome write peer state, publish
// outbound data and apply the service plan, in that order.
func (r *AdminUIReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := log.FromContext(ctx)
	startTime := time.Now()

	ui := &adminuiv1beta1.AdminUI{}
	if err := r.Get(ctx, req.NamespacedName, ui); err != nil {
		if errors.IsNotFound(err) {
			// Owned objects are garbage collected with the CR.
			return ctrl.Result{}, nil
		}
		log.Error(err, "unable to fetch AdminUI")
		return ctrl.Result{}, err
	}

	// Record the state this pass concluded with; passes that abort on an
	// infrastructure error never reach a status update and count as Error.
	passState := "Error"
	defer func() {
		RecordReconcile(passState, time.Since(startTime).Seconds())
	}()

	conclude := func(state, message, version string) (ctrl.Result, error) {
		passState = state
		return r.updateStatus(ctx, ui, state, message, version)
	}

	sup := r.NewSupervisor(ui)

	// The workload container must exist before anything can be planned or
	// executed inside it, mirroring how the platform provisions the
	// container before the operator configures it.
	if err := sup.EnsureBase(ctx); err != nil {
		log.Error(err, "failed to ensure workload container")
		return conclude(adminuiv1beta1.StateWaiting, "waiting for workload container", "")
	}

	snap, err := integrations.NewLoader(r.Client).Load(ctx, ui)
	if err != nil {
		log.Error(err, "failed to load integration data")
		return ctrl.Result{}, err
	}

	cfg, cfgErr := plan.ConfigFromSpec(ui.Spec)

	store := peerdata.NewStore(r.Client, r.Leader)
	if err := store.EnsureEncryptionKey(ctx, ui); err != nil {
		log.Error(err, "failed to ensure encryption key")
		return ctrl.Result{}, err
	}

	peer, err := store.Get(ctx, ui)
	if err != nil {
		log.Error(err, "failed to read peer state")
		return ctrl.Result{}, err
	}

	containerReady, err := sup.Ready(ctx)
	if err != nil {
		log.Error(err, "failed to check workload readiness")
		return ctrl.Result{}, err
	}

	cli := workload.NewCLI(sup)
	version := ui.Status.Version
	if containerReady {
		if v, err := cli.Version(ctx); err != nil {
			log.V(1).Info("could not determine workload version", "error", err)
		} else {
			version = v
		}
	}

	trusted := r.issuerTrusted(ctx, ui, snap, log)

	// Leader duties that need a running container: database migration and
	// the OpenFGA authorization model. Both record their result in peer
	// state, which the evaluator below gates on.
	if containerReady && r.Leader.IsLeader() {
		peer = r.runLeaderTasks(ctx, ui, snap, cli, store, peer, log)
	}

	in := EvalInput{
		Config:            cfg,
		ConfigErr:         cfgErr,
		Integrations:      snap,
		Peer:              peer,
		OAuthConfigured:   ui.Spec.Integrations.OAuth != nil,
		IngressConfigured: ui.Spec.Ingress != nil,
		IssuerTrusted:     trusted,
		ContainerReady:    containerReady,
	}

	outcome := Evaluate(in)
	if outcome.Kind != KindProceed {
		state, _, message := Aggregate(in)
		return conclude(state, message, version)
	}

	if err := r.publish(ctx, ui, cfg); err != nil {
		log.Error(err, "failed to publish outbound data")
		return ctrl.Result{}, err
	}

	desired := plan.Build(plan.Inputs{
		Image:           ui.Spec.Image,
		Config:          cfg,
		Integrations:    snap,
		BaseURL:         baseURL(ui, cfg),
		OpenFGAModelID:  peer.OpenFGAModelID(),
		CACertConfigMap: caCertConfigMapName(ui),
	})

	applied, err := sup.AppliedHash(ctx)
	if err != nil {
		log.Error(err, "failed to read applied plan hash")
		return ctrl.Result{}, err
	}

	if applied != desired.Hash() {
		if err := sup.ApplyPlan(ctx, desired); err != nil {
			// Transient: the next triggering event retries from scratch.
			log.Error(err, "failed to apply service plan")
			PlanApplies.WithLabelValues("failure").Inc()
			return conclude(adminuiv1beta1.StateWaiting, "waiting for workload to accept the service plan", version)
		}
		PlanApplies.WithLabelValues("success").Inc()
		log.Info("service plan applied", "hash", desired.Hash())
	}

	// The plan is in place; report Active only once the workload actually
	// answers on its status endpoint.
	if err := r.Health.CheckHealth(ctx, serviceURL(ui, cfg)); err != nil {
		log.V(1).Info("workload health check failed", "error", err)
		return conclude(adminuiv1beta1.StateWaiting, "waiting for workload health check", version)
	}

	return conclude(adminuiv1beta1.StateActive, "admin ui is running", version)
}

// runLeaderTasks runs the exec-backed duties of the leader and returns the
// refreshed peer state. Failures are logged and surface through the
// evaluator as waiting conditions; they never abort the pass.
func (r *AdminUIReconciler) runLeaderTasks(
	ctx context.Context,
	ui *adminuiv1beta1.AdminUI,
	snap *integrations.Snapshot,
	cli *workload.CLI,
	store *peerdata.Store,
	peer peerdata.Data,
	log logr.Logger,
) peerdata.Data {
	if snap.Database.Present() && !schemaVersionAtLeast(peer.MigrationVersion(), MinSchemaVersion) {
		if _, err := cli.MigrateUp(ctx, snap.Database.DSN(), MigrationTimeout); err != nil {
			log.Error(err, "database migration failed")
			MigrationRuns.WithLabelValues("up", "failure").Inc()
		} else if err := store.Set(ctx, ui, peerdata.KeyMigrationVersion, MinSchemaVersion); err != nil {
			log.Error(err, "failed to record migration version")
		} else {
			MigrationRuns.WithLabelValues("up", "success").Inc()
			log.Info("database migrated", "version", MinSchemaVersion)
		}
	}

	if snap.OpenFGA.Present() && peer.OpenFGAModelID() == "" {
		modelID, err := cli.CreateFGAModel(ctx, snap.OpenFGA.APIURL, snap.OpenFGA.APIToken, snap.OpenFGA.StoreID)
		if err != nil {
			log.Error(err, "failed to create openfga model")
		} else if err := store.Set(ctx, ui, peerdata.KeyOpenFGAModelID, modelID); err != nil {
			log.Error(err, "failed to record openfga model id")
		} else {
			log.Info("openfga model created", "model", modelID)
		}
	}

	refreshed, err := store.Get(ctx, ui)
	if err != nil {
		log.Error(err, "failed to refresh peer state")
		return peer
	}
	return refreshed
}

// issuerTrusted validates the OAuth issuer chain against the transferred CA
// bundle. With no OAuth client or no bundle there is nothing to validate; a
// transient failure reaching the issuer does not block.
func (r *AdminUIReconciler) issuerTrusted(ctx context.Context, ui *adminuiv1beta1.AdminUI, snap *integrations.Snapshot, log logr.Logger) bool {
	if ui.Spec.Integrations.OAuth == nil || !snap.OAuth.Present() || !snap.CABundle.Present() {
		return true
	}

	trusted, err := r.Trust.ValidateIssuerTrust(ctx, snap.OAuth.IssuerURL, []byte(snap.CABundle.Bundle))
	if err != nil {
		log.Error(err, "could not validate oauth issuer trust")
		return true
	}
	return trusted
}

// caCertConfigMapName returns the CA bundle config map to mount, or "".
func caCertConfigMapName(ui *adminuiv1beta1.AdminUI) string {
	if ui.Spec.Integrations.CABundle == nil {
		return ""
	}
	return ui.Spec.Integrations.CABundle.Name
}

func (r *AdminUIReconciler) updateStatus(ctx context.Context, ui *adminuiv1beta1.AdminUI, state, message, version string) (ctrl.Result, error) {
	ui.Status.State = state
	ui.Status.Ready = state == adminuiv1beta1.StateActive
	ui.Status.Message = message
	if version != "" {
		ui.Status.Version = version
	}
	setReadyCondition(ui, state, message)

	if err := r.Status().Update(ctx, ui); err != nil {
		return ctrl.Result{}, err
	}

	if state == adminuiv1beta1.StateActive {
		return ctrl.Result{RequeueAfter: GetSyncPeriod()}, nil
	}
	return ctrl.Result{RequeueAfter: RetryDelay}, nil
}

// SetupWithManager sets up the controller with the Manager
func (r *AdminUIReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&adminuiv1beta1.AdminUI{}).
		Owns(&appsv1.Deployment{}).
		Owns(&corev1.Secret{}).
		Owns(&corev1.Service{}).
		Owns(&corev1.ConfigMap{}).
		Owns(&networkingv1.Ingress{}).
		Complete(r)
}
