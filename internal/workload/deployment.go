package workload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
	"github.com/identity-platform/adminui-operator/internal/plan"
)

const (
	// ContainerName is the workload container inside the pod
	ContainerName = "admin-ui"

	// PlanHashAnnotation records the hash of the applied service plan
	PlanHashAnnotation = "adminui.identity-platform.io/plan-hash"

	appNameLabel = "identity-platform-admin-ui"
)

// KubeSupervisor supervises the workload of one AdminUI through a
// Deployment and pod exec sessions.
type KubeSupervisor struct {
	client     client.Client
	clientset  kubernetes.Interface
	restConfig *rest.Config
	ui         *adminuiv1beta1.AdminUI
}

// NewKubeSupervisor creates a supervisor bound to one AdminUI.
func NewKubeSupervisor(c client.Client, cs kubernetes.Interface, cfg *rest.Config, ui *adminuiv1beta1.AdminUI) *KubeSupervisor {
	return &KubeSupervisor{
		client:     c,
		clientset:  cs,
		restConfig: cfg,
		ui:         ui,
	}
}

// DeploymentName returns the workload deployment name for an AdminUI.
func DeploymentName(ui *adminuiv1beta1.AdminUI) string {
	return ui.Name
}

// Labels returns the selector labels of the workload pods.
func Labels(ui *adminuiv1beta1.AdminUI) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":     appNameLabel,
		"app.kubernetes.io/instance": ui.Name,
	}
}

// EnsureBase creates the workload deployment with the bootstrap plan when
// it does not exist. An existing deployment is left untouched so an applied
// plan is never reverted.
func (s *KubeSupervisor) EnsureBase(ctx context.Context) error {
	deploy := &appsv1.Deployment{}
	key := types.NamespacedName{Name: DeploymentName(s.ui), Namespace: s.ui.Namespace}
	err := s.client.Get(ctx, key, deploy)
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to check workload deployment: %w", err)
	}

	return s.ApplyPlan(ctx, plan.Default(s.ui.Spec.Image))
}

// ApplyPlan creates or updates the workload deployment to match the plan
// and records the plan hash on the deployment.
func (s *KubeSupervisor) ApplyPlan(ctx context.Context, p plan.ServicePlan) error {
	deploy := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      DeploymentName(s.ui),
			Namespace: s.ui.Namespace,
		},
	}

	_, err := controllerutil.CreateOrUpdate(ctx, s.client, deploy, func() error {
		labels := Labels(s.ui)
		if deploy.Annotations == nil {
			deploy.Annotations = map[string]string{}
		}
		deploy.Annotations[PlanHashAnnotation] = p.Hash()
		deploy.Labels = labels
		deploy.Spec.Replicas = ptr.To(int32(1))
		deploy.Spec.Selector = &metav1.LabelSelector{MatchLabels: labels}
		deploy.Spec.Template = corev1.PodTemplateSpec{
			ObjectMeta: metav1.ObjectMeta{Labels: labels},
			Spec:       s.podSpec(p),
		}
		return controllerutil.SetControllerReference(s.ui, deploy, s.client.Scheme())
	})
	if err != nil {
		return fmt.Errorf("failed to apply service plan: %w", err)
	}
	return nil
}

// AppliedHash returns the plan hash recorded on the workload deployment.
func (s *KubeSupervisor) AppliedHash(ctx context.Context) (string, error) {
	deploy := &appsv1.Deployment{}
	key := types.NamespacedName{Name: DeploymentName(s.ui), Namespace: s.ui.Namespace}
	if err := s.client.Get(ctx, key, deploy); err != nil {
		if apierrors.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read workload deployment: %w", err)
	}
	return deploy.Annotations[PlanHashAnnotation], nil
}

// Ready reports whether the workload has a ready replica to serve traffic
// and accept exec sessions.
func (s *KubeSupervisor) Ready(ctx context.Context) (bool, error) {
	deploy := &appsv1.Deployment{}
	key := types.NamespacedName{Name: DeploymentName(s.ui), Namespace: s.ui.Namespace}
	if err := s.client.Get(ctx, key, deploy); err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read workload deployment: %w", err)
	}
	return deploy.Status.ReadyReplicas > 0, nil
}

// Exec runs a command inside the workload container of a running pod.
// A non-zero exit is reported through ExecResult, not as an error; only
// transport failures and timeouts return errors.
func (s *KubeSupervisor) Exec(ctx context.Context, cmd []string, opts ExecOptions) (ExecResult, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultExecTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pod, err := s.findRunningPod(ctx)
	if err != nil {
		return ExecResult{}, err
	}

	req := s.clientset.CoreV1().RESTClient().
		Post().
		Resource("pods").
		Name(pod).
		Namespace(s.ui.Namespace).
		SubResource("exec").
		Param("container", ContainerName)
	for _, c := range cmd {
		req.Param("command", c)
	}
	req.Param("stdout", "true")
	req.Param("stderr", "true")
	if opts.Stdin != "" {
		req.Param("stdin", "true")
	}

	executor, err := remotecommand.NewSPDYExecutor(s.restConfig, "POST", req.URL())
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to create exec session: %w", err)
	}

	var stdout, stderr bytes.Buffer
	streams := remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	}
	if opts.Stdin != "" {
		streams.Stdin = bytes.NewBufferString(opts.Stdin)
	}

	err = executor.StreamWithContext(ctx, streams)
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var codeErr utilexec.CodeExitError
		if errors.As(err, &codeErr) {
			result.ExitCode = codeErr.Code
			return result, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return result, fmt.Errorf("exec failed: %w", err)
	}
	return result, nil
}

func (s *KubeSupervisor) findRunningPod(ctx context.Context) (string, error) {
	pods := &corev1.PodList{}
	err := s.client.List(ctx, pods,
		client.InNamespace(s.ui.Namespace),
		client.MatchingLabels(Labels(s.ui)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to list workload pods: %w", err)
	}

	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodRunning && pod.DeletionTimestamp.IsZero() {
			return pod.Name, nil
		}
	}
	return "", fmt.Errorf("no running workload pod found")
}

func (s *KubeSupervisor) podSpec(p plan.ServicePlan) corev1.PodSpec {
	container := corev1.Container{
		Name:    ContainerName,
		Image:   p.Image,
		Command: p.Command,
		Env:     envVars(p.Env),
		Ports: []corev1.ContainerPort{
			{Name: "http", ContainerPort: p.Port, Protocol: corev1.ProtocolTCP},
		},
		ReadinessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: p.HealthPath,
					Port: intstr.FromInt32(p.Port),
				},
			},
			InitialDelaySeconds: 5,
			PeriodSeconds:       10,
		},
	}

	limits := corev1.ResourceList{}
	if p.CPU != "" {
		if q, err := resource.ParseQuantity(p.CPU); err == nil {
			limits[corev1.ResourceCPU] = q
		}
	}
	if p.Memory != "" {
		if q, err := resource.ParseQuantity(p.Memory); err == nil {
			limits[corev1.ResourceMemory] = q
		}
	}
	if len(limits) > 0 {
		container.Resources = corev1.ResourceRequirements{Limits: limits}
	}

	spec := corev1.PodSpec{
		Containers: []corev1.Container{container},
	}

	if p.CACertConfigMap != "" {
		spec.Volumes = []corev1.Volume{
			{
				Name: "ca-certs",
				VolumeSource: corev1.VolumeSource{
					ConfigMap: &corev1.ConfigMapVolumeSource{
						LocalObjectReference: corev1.LocalObjectReference{Name: p.CACertConfigMap},
					},
				},
			},
		}
		spec.Containers[0].VolumeMounts = []corev1.VolumeMount{
			{Name: "ca-certs", MountPath: plan.CACertMountPath, ReadOnly: true},
		}
	}

	return spec
}

// envVars converts the plan's env map into a sorted EnvVar slice so the
// rendered pod spec is deterministic.
func envVars(env map[string]string) []corev1.EnvVar {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := make([]corev1.EnvVar, 0, len(keys))
	for _, k := range keys {
		vars = append(vars, corev1.EnvVar{Name: k, Value: env[k]})
	}
	return vars
}
