// adminuictl runs administrative actions against a deployed Admin UI
// workload: database migrations and identity creation. Commands exec into
// the running workload pod, the same path the operator itself uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/yaml"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
	"github.com/identity-platform/adminui-operator/internal/integrations"
	"github.com/identity-platform/adminui-operator/internal/workload"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(adminuiv1beta1.AddToScheme(scheme))
}

type options struct {
	name      string
	namespace string
}

// target bundles everything a command needs to act on one AdminUI.
type target struct {
	ui   *adminuiv1beta1.AdminUI
	cli  *workload.CLI
	snap *integrations.Snapshot
}

func (o *options) connect(ctx context.Context) (*target, error) {
	restConfig, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig: %w (ensure KUBECONFIG is set or ~/.kube/config exists)", err)
	}

	k8sClient, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	ui := &adminuiv1beta1.AdminUI{}
	if err := k8sClient.Get(ctx, types.NamespacedName{Name: o.name, Namespace: o.namespace}, ui); err != nil {
		return nil, fmt.Errorf("failed to get AdminUI %s/%s: %w", o.namespace, o.name, err)
	}

	snap, err := integrations.NewLoader(k8sClient).Load(ctx, ui)
	if err != nil {
		return nil, fmt.Errorf("failed to load integration data: %w", err)
	}

	sup := workload.NewKubeSupervisor(k8sClient, clientset, restConfig, ui)
	return &target{ui: ui, cli: workload.NewCLI(sup), snap: snap}, nil
}

// resolveDSN prefers an explicit --dsn flag over the database integration.
func (t *target) resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if !t.snap.Database.Present() {
		return "", fmt.Errorf("no database integration found for %s/%s and no --dsn given", t.ui.Namespace, t.ui.Name)
	}
	return t.snap.Database.DSN(), nil
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:           "adminuictl",
		Short:         "Run administrative actions against an Identity Platform Admin UI deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.name, "name", "", "Name of the AdminUI resource (required)")
	root.PersistentFlags().StringVarP(&opts.namespace, "namespace", "n", "default", "Namespace of the AdminUI resource")
	cobra.CheckErr(root.MarkPersistentFlagRequired("name"))

	root.AddCommand(
		newVersionCmd(opts),
		newCreateIdentityCmd(opts),
		newMigrateCmd(opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of the running Admin UI workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			version, err := t.cli.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func newCreateIdentityCmd(opts *options) *cobra.Command {
	var traitsRaw string
	var schemaID string
	var password string

	cmd := &cobra.Command{
		Use:   "create-identity",
		Short: "Create an identity in the connected Kratos instance",
		Long: `Create an identity in the connected Kratos instance.

Traits are given as a JSON object matching the identity schema, for example:
  adminuictl create-identity --name admin-ui --traits '{"email":"admin@example.com"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var traits map[string]any
			if err := json.Unmarshal([]byte(traitsRaw), &traits); err != nil {
				return fmt.Errorf("invalid --traits JSON: %w", err)
			}

			t, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}

			identityID, err := t.cli.CreateIdentity(cmd.Context(), traits, schemaID, password)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(map[string]string{"identity-id": identityID})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&traitsRaw, "traits", "", "Identity traits as a JSON object (required)")
	cmd.Flags().StringVar(&schemaID, "schema", "", `Identity schema ID (default "default")`)
	cmd.Flags().StringVar(&password, "password", "", "Initial password for the identity")
	cobra.CheckErr(cmd.MarkFlagRequired("traits"))

	return cmd
}

func newMigrateCmd(opts *options) *cobra.Command {
	var dsn string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Admin UI database schema",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database DSN (default: taken from the database integration)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for the migration run")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			resolved, err := t.resolveDSN(dsn)
			if err != nil {
				return err
			}
			output, err := t.cli.MigrateUp(cmd.Context(), resolved, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	var downVersion string
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll the schema back, optionally to a target version",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			resolved, err := t.resolveDSN(dsn)
			if err != nil {
				return err
			}
			output, err := t.cli.MigrateDown(cmd.Context(), resolved, downVersion, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	down.Flags().StringVar(&downVersion, "version", "", "Target schema version to roll back to")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current schema migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			resolved, err := t.resolveDSN(dsn)
			if err != nil {
				return err
			}
			output, err := t.cli.MigrateStatus(cmd.Context(), resolved)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
