package main

import (
	"flag"
	"os"
	"time"

	// Import all Kubernetes client auth plugins
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
	"github.com/identity-platform/adminui-operator/internal/adminui"
	"github.com/identity-platform/adminui-operator/internal/controller"
	"github.com/identity-platform/adminui-operator/internal/leader"
	"github.com/identity-platform/adminui-operator/internal/workload"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(adminuiv1beta1.AddToScheme(scheme))
}

func main() {
	var metricsAddr string
	var enableLeaderElection bool
	var probeAddr string
	var syncPeriod time.Duration

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.DurationVar(&syncPeriod, "sync-period", controller.DefaultSyncPeriod,
		"The interval at which successfully reconciled resources are re-checked for drift. "+
			"Covers integration data changing without a watch event firing.")

	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	// Configure global sync period for all controllers
	controller.SetSyncPeriod(syncPeriod)
	setupLog.Info("configured sync period", "syncPeriod", syncPeriod)

	restConfig := ctrl.GetConfigOrDie()

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "adminui-operator.identity-platform.io",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		setupLog.Error(err, "unable to create clientset")
		os.Exit(1)
	}

	// Without leader election the single replica is always the leader.
	var leaderChecker leader.Checker = leader.Static(true)
	if enableLeaderElection {
		leaderChecker = leader.NewElectionChecker(mgr.Elected())
	}

	adminuiClient := adminui.NewClient(ctrl.Log.WithName("adminui"))

	if err = (&controller.AdminUIReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
		Leader: leaderChecker,
		Trust:  adminuiClient,
		Health: adminuiClient,
		NewSupervisor: func(ui *adminuiv1beta1.AdminUI) workload.Supervisor {
			return workload.NewKubeSupervisor(mgr.GetClient(), clientset, restConfig, ui)
		},
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "AdminUI")
		os.Exit(1)
	}

	// Add health checks
	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
