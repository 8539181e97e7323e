package workload

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/identity-platform/adminui-operator/internal/plan"
)

var (
	versionRegex  = regexp.MustCompile(`App Version:\s*(\S+)`)
	modelRegex    = regexp.MustCompile(`Created model:\s*(\S+)`)
	identityRegex = regexp.MustCompile(`Identity created:\s*(\S+)`)
)

// CLI wraps the Admin UI command line shipped inside the workload image.
type CLI struct {
	sup Supervisor
}

// NewCLI creates a CLI driver over the given supervisor.
func NewCLI(sup Supervisor) *CLI {
	return &CLI{sup: sup}
}

// Version returns the workload version reported by the binary.
func (c *CLI) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, []string{plan.BinaryPath, "version"}, ExecOptions{})
	if err != nil {
		return "", err
	}

	matched := versionRegex.FindStringSubmatch(out)
	if matched == nil {
		return "", fmt.Errorf("failed to parse version from output: %q", out)
	}
	return matched[1], nil
}

// CreateFGAModel creates the OpenFGA authorization model and returns its id.
func (c *CLI) CreateFGAModel(ctx context.Context, apiURL, apiToken, storeID string) (string, error) {
	cmd := []string{
		plan.BinaryPath,
		"create-fga-model",
		"--fga-api-url", apiURL,
		"--fga-api-token", apiToken,
		"--fga-store-id", storeID,
	}

	out, err := c.run(ctx, cmd, ExecOptions{})
	if err != nil {
		return "", err
	}

	matched := modelRegex.FindStringSubmatch(out)
	if matched == nil {
		return "", fmt.Errorf("failed to parse model id from output: %q", out)
	}
	return matched[1], nil
}

// CreateIdentity creates an identity from the given traits and returns its
// id. The identity definition is fed to the CLI on stdin.
func (c *CLI) CreateIdentity(ctx context.Context, traits map[string]any, schemaID, password string) (string, error) {
	if schemaID == "" {
		schemaID = "default"
	}
	identity := map[string]any{
		"traits":    traits,
		"schema_id": schemaID,
	}
	if password != "" {
		identity["credentials"] = map[string]any{
			"password": map[string]any{
				"config": map[string]any{"password": password},
			},
		}
	}

	stdin, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to encode identity: %w", err)
	}

	out, err := c.run(ctx, []string{plan.BinaryPath, "create-identity"}, ExecOptions{Stdin: string(stdin)})
	if err != nil {
		return "", err
	}

	matched := identityRegex.FindStringSubmatch(out)
	if matched == nil {
		return "", fmt.Errorf("failed to parse identity id from output: %q", out)
	}
	return matched[1], nil
}

// MigrateUp applies pending database migrations and returns the command output.
func (c *CLI) MigrateUp(ctx context.Context, dsn string, timeout time.Duration) (string, error) {
	cmd := []string{plan.BinaryPath, "migrate", "--dsn", dsn, "up"}
	return c.run(ctx, cmd, ExecOptions{Timeout: timeout})
}

// MigrateDown rolls back database migrations, optionally to a target
// version, and returns the command output.
func (c *CLI) MigrateDown(ctx context.Context, dsn, version string, timeout time.Duration) (string, error) {
	cmd := []string{plan.BinaryPath, "migrate", "--dsn", dsn, "down"}
	if version != "" {
		cmd = append(cmd, version)
	}
	return c.run(ctx, cmd, ExecOptions{Timeout: timeout})
}

// MigrateStatus reports the database migration status. The migrate tool
// writes its report to stderr.
func (c *CLI) MigrateStatus(ctx context.Context, dsn string) (string, error) {
	cmd := []string{plan.BinaryPath, "migrate", "--dsn", dsn, "status"}
	res, err := c.sup.Exec(ctx, cmd, ExecOptions{})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &CommandError{ExitCode: res.ExitCode, Output: combinedOutput(res)}
	}
	return res.Stderr, nil
}

// run executes a command and translates a non-zero exit into a CommandError
// carrying the captured output.
func (c *CLI) run(ctx context.Context, cmd []string, opts ExecOptions) (string, error) {
	res, err := c.sup.Exec(ctx, cmd, opts)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &CommandError{ExitCode: res.ExitCode, Output: combinedOutput(res)}
	}
	return res.Stdout, nil
}

func combinedOutput(res ExecResult) string {
	out := strings.TrimSpace(res.Stderr)
	if out == "" {
		out = strings.TrimSpace(res.Stdout)
	}
	return out
}
