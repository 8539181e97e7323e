package controller

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
	"github.com/identity-platform/adminui-operator/internal/plan"
	"github.com/identity-platform/adminui-operator/internal/workload"
)

// grafanaDashboard is the dashboard definition published for discovery by a
// Grafana sidecar watching for labeled config maps.
const grafanaDashboard = `{
  "title": "Identity Platform Admin UI",
  "tags": ["identity-platform"],
  "panels": [
    {
      "title": "Request rate",
      "type": "timeseries",
      "targets": [{"expr": "sum(rate(http_requests_total{job=\"%s\"}[5m]))"}]
    },
    {
      "title": "Request errors",
      "type": "timeseries",
      "targets": [{"expr": "sum(rate(http_requests_total{job=\"%s\",code=~\"5..\"}[5m]))"}]
    }
  ]
}`

// ServiceName returns the workload service name for an AdminUI.
func ServiceName(ui *adminuiv1beta1.AdminUI) string {
	return ui.Name
}

// publish pushes the outbound data consumed by collaborating services: the
// workload service with its metrics scrape target, the ingress request and
// the dashboard definition. It runs only on a Proceed outcome, after peer
// state is written and before the service plan is applied.
func (r *AdminUIReconciler) publish(ctx context.Context, ui *adminuiv1beta1.AdminUI, cfg plan.Config) error {
	if err := r.publishService(ctx, ui, cfg); err != nil {
		return err
	}
	if ui.Spec.Ingress != nil {
		if err := r.publishIngress(ctx, ui, cfg); err != nil {
			return err
		}
	}
	return r.publishDashboard(ctx, ui)
}

func (r *AdminUIReconciler) publishService(ctx context.Context, ui *adminuiv1beta1.AdminUI, cfg plan.Config) error {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ServiceName(ui),
			Namespace: ui.Namespace,
		},
	}

	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, svc, func() error {
		if svc.Annotations == nil {
			svc.Annotations = map[string]string{}
		}
		svc.Annotations["prometheus.io/scrape"] = "true"
		svc.Annotations["prometheus.io/path"] = plan.MetricsPath
		svc.Annotations["prometheus.io/port"] = fmt.Sprintf("%d", cfg.Port)
		svc.Labels = workload.Labels(ui)
		svc.Spec.Selector = workload.Labels(ui)
		svc.Spec.Ports = []corev1.ServicePort{
			{
				Name:       "http",
				Port:       cfg.Port,
				TargetPort: intstr.FromInt32(cfg.Port),
				Protocol:   corev1.ProtocolTCP,
			},
		}
		return controllerutil.SetControllerReference(ui, svc, r.Scheme)
	})
	if err != nil {
		return fmt.Errorf("failed to publish service: %w", err)
	}
	return nil
}

func (r *AdminUIReconciler) publishIngress(ctx context.Context, ui *adminuiv1beta1.AdminUI, cfg plan.Config) error {
	ing := &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ui.Name,
			Namespace: ui.Namespace,
		},
	}

	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, ing, func() error {
		spec := ui.Spec.Ingress
		pathType := networkingv1.PathTypePrefix
		ing.Labels = workload.Labels(ui)
		ing.Spec.IngressClassName = spec.ClassName
		ing.Spec.Rules = []networkingv1.IngressRule{
			{
				Host: spec.Host,
				IngressRuleValue: networkingv1.IngressRuleValue{
					HTTP: &networkingv1.HTTPIngressRuleValue{
						Paths: []networkingv1.HTTPIngressPath{
							{
								Path:     "/",
								PathType: &pathType,
								Backend: networkingv1.IngressBackend{
									Service: &networkingv1.IngressServiceBackend{
										Name: ServiceName(ui),
										Port: networkingv1.ServiceBackendPort{Number: cfg.Port},
									},
								},
							},
						},
					},
				},
			},
		}
		if spec.TLSSecretName != "" {
			ing.Spec.TLS = []networkingv1.IngressTLS{
				{Hosts: []string{spec.Host}, SecretName: spec.TLSSecretName},
			}
		} else {
			ing.Spec.TLS = nil
		}
		return controllerutil.SetControllerReference(ui, ing, r.Scheme)
	})
	if err != nil {
		return fmt.Errorf("failed to publish ingress: %w", err)
	}
	return nil
}

func (r *AdminUIReconciler) publishDashboard(ctx context.Context, ui *adminuiv1beta1.AdminUI) error {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ui.Name + "-dashboard",
			Namespace: ui.Namespace,
		},
	}

	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, cm, func() error {
		if cm.Labels == nil {
			cm.Labels = map[string]string{}
		}
		for k, v := range workload.Labels(ui) {
			cm.Labels[k] = v
		}
		cm.Labels["grafana_dashboard"] = "1"
		cm.Data = map[string]string{
			"admin-ui.json": fmt.Sprintf(grafanaDashboard, ui.Name, ui.Name),
		}
		return controllerutil.SetControllerReference(ui, cm, r.Scheme)
	})
	if err != nil {
		return fmt.Errorf("failed to publish dashboard: %w", err)
	}
	return nil
}

// baseURL returns the externally visible URL of the Admin UI: the ingress
// URL when exposed, the in-cluster service URL otherwise.
func baseURL(ui *adminuiv1beta1.AdminUI, cfg plan.Config) string {
	if ui.Spec.Ingress != nil {
		scheme := "http"
		if ui.Spec.Ingress.TLSSecretName != "" {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s", scheme, ui.Spec.Ingress.Host)
	}
	return serviceURL(ui, cfg)
}

// serviceURL returns the in-cluster URL of the workload service. Health
// probes always go through it, never through the ingress.
func serviceURL(ui *adminuiv1beta1.AdminUI, cfg plan.Config) string {
	return fmt.Sprintf("http://%s.%s.svc.cluster.local:%d", ServiceName(ui), ui.Namespace, cfg.Port)
}
