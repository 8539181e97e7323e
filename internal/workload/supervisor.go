// Package workload drives the Admin UI container: applying the desired
// service plan, checking readiness and executing the in-container CLI.
package workload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/identity-platform/adminui-operator/internal/plan"
)

// DefaultExecTimeout bounds CLI invocations that carry no explicit timeout.
const DefaultExecTimeout = 20 * time.Second

// ErrTimeout is returned when an in-container command exceeds its timeout.
var ErrTimeout = errors.New("command timed out")

// ExecOptions controls one in-container command invocation.
type ExecOptions struct {
	Timeout time.Duration
	Stdin   string
}

// ExecResult is the outcome of an in-container command.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandError is returned when an in-container command exits non-zero.
type CommandError struct {
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command exited with code %d: %s", e.ExitCode, e.Output)
}

// Supervisor is the container supervisor the reconciler talks to. The
// production implementation manages a Deployment; tests substitute a fake.
type Supervisor interface {
	// EnsureBase creates the workload container if it does not exist yet,
	// running the bootstrap plan. It never overwrites an applied plan.
	EnsureBase(ctx context.Context) error

	// ApplyPlan applies the desired service plan to the workload.
	ApplyPlan(ctx context.Context, p plan.ServicePlan) error

	// AppliedHash returns the hash of the currently applied plan, or the
	// empty string when no plan has been applied.
	AppliedHash(ctx context.Context) (string, error)

	// Ready reports whether the workload container is reachable.
	Ready(ctx context.Context) (bool, error)

	// Exec runs a command inside the workload container.
	Exec(ctx context.Context, cmd []string, opts ExecOptions) (ExecResult, error)
}
