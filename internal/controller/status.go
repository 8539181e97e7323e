package controller

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
)

// Aggregate re-runs the precondition evaluator on live input and maps the
// outcome to the externally visible status. It deliberately does not reuse
// a cached outcome: status always reflects the state at query time. When
// several conditions fail at once, the evaluator order decides which one is
// reported, so the most fundamental failure wins.
func Aggregate(in EvalInput) (state string, ready bool, message string) {
	outcome := Evaluate(in)
	switch outcome.Kind {
	case KindBlocked:
		return adminuiv1beta1.StateBlocked, false, outcome.Reason
	case KindWaiting:
		return adminuiv1beta1.StateWaiting, false, outcome.Reason
	default:
		return adminuiv1beta1.StateActive, true, "admin ui is running"
	}
}

// setReadyCondition records the state on the CR's condition list.
func setReadyCondition(ui *adminuiv1beta1.AdminUI, state, message string) {
	condition := metav1.Condition{
		Type:               "Ready",
		Status:             metav1.ConditionFalse,
		Reason:             state,
		Message:            message,
		ObservedGeneration: ui.Generation,
		LastTransitionTime: metav1.Now(),
	}
	if state == adminuiv1beta1.StateActive {
		condition.Status = metav1.ConditionTrue
	}

	found := false
	for i, c := range ui.Status.Conditions {
		if c.Type == "Ready" {
			if c.Status == condition.Status && c.Reason == condition.Reason && c.Message == condition.Message {
				condition.LastTransitionTime = c.LastTransitionTime
			}
			ui.Status.Conditions[i] = condition
			found = true
			break
		}
	}
	if !found {
		ui.Status.Conditions = append(ui.Status.Conditions, condition)
	}
}
