package workload

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/identity-platform/adminui-operator/internal/plan"
)

// fakeSupervisor records exec invocations and replays scripted results.
type fakeSupervisor struct {
	results []execScript
	calls   []execCall
}

type execScript struct {
	result ExecResult
	err    error
}

type execCall struct {
	cmd  []string
	opts ExecOptions
}

func (f *fakeSupervisor) EnsureBase(ctx context.Context) error { return nil }

func (f *fakeSupervisor) ApplyPlan(ctx context.Context, p plan.ServicePlan) error { return nil }

func (f *fakeSupervisor) AppliedHash(ctx context.Context) (string, error) { return "", nil }

func (f *fakeSupervisor) Ready(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeSupervisor) Exec(ctx context.Context, cmd []string, opts ExecOptions) (ExecResult, error) {
	f.calls = append(f.calls, execCall{cmd: cmd, opts: opts})
	if len(f.results) == 0 {
		return ExecResult{}, nil
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.result, next.err
}

func TestCLIVersion(t *testing.T) {
	tests := []struct {
		name    string
		result  ExecResult
		want    string
		wantErr bool
	}{
		{
			name:   "parses version line",
			result: ExecResult{Stdout: "App Version: 1.19.0\nGit SHA: abc\n"},
			want:   "1.19.0",
		},
		{
			name:    "unparseable output",
			result:  ExecResult{Stdout: "no version here"},
			wantErr: true,
		},
		{
			name:    "non-zero exit",
			result:  ExecResult{ExitCode: 1, Stderr: "boom"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sup := &fakeSupervisor{results: []execScript{{result: tt.result}}}
			cli := NewCLI(sup)

			got, err := cli.Version(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Version() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Version() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIVersionCommandError(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{
		{result: ExecResult{ExitCode: 2, Stderr: "flag provided but not defined"}},
	}}
	cli := NewCLI(sup)

	_, err := cli.Version(context.Background())
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Version() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", cmdErr.ExitCode)
	}
	if cmdErr.Output != "flag provided but not defined" {
		t.Errorf("Output = %q", cmdErr.Output)
	}
}

func TestCLICreateFGAModel(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{
		{result: ExecResult{Stdout: "Created model: 01HWXYZ\n"}},
	}}
	cli := NewCLI(sup)

	got, err := cli.CreateFGAModel(context.Background(), "http://openfga:8080", "token", "store-1")
	if err != nil {
		t.Fatalf("CreateFGAModel() error = %v", err)
	}
	if got != "01HWXYZ" {
		t.Errorf("CreateFGAModel() = %q, want 01HWXYZ", got)
	}

	cmd := sup.calls[0].cmd
	wantCmd := []string{
		plan.BinaryPath, "create-fga-model",
		"--fga-api-url", "http://openfga:8080",
		"--fga-api-token", "token",
		"--fga-store-id", "store-1",
	}
	if len(cmd) != len(wantCmd) {
		t.Fatalf("cmd = %v, want %v", cmd, wantCmd)
	}
	for i := range wantCmd {
		if cmd[i] != wantCmd[i] {
			t.Errorf("cmd[%d] = %q, want %q", i, cmd[i], wantCmd[i])
		}
	}
}

func TestCLICreateIdentity(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{
		{result: ExecResult{Stdout: "Identity created: id-123\n"}},
	}}
	cli := NewCLI(sup)

	got, err := cli.CreateIdentity(context.Background(), map[string]any{"email": "a@b.c"}, "", "pw")
	if err != nil {
		t.Fatalf("CreateIdentity() error = %v", err)
	}
	if got != "id-123" {
		t.Errorf("CreateIdentity() = %q, want id-123", got)
	}

	// The identity definition goes in on stdin with the default schema.
	var identity map[string]any
	if err := json.Unmarshal([]byte(sup.calls[0].opts.Stdin), &identity); err != nil {
		t.Fatalf("stdin is not valid JSON: %v", err)
	}
	if identity["schema_id"] != "default" {
		t.Errorf("schema_id = %v, want default", identity["schema_id"])
	}
	if _, ok := identity["credentials"]; !ok {
		t.Error("credentials missing despite password being set")
	}
}

func TestCLICreateIdentityWithoutPassword(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{
		{result: ExecResult{Stdout: "Identity created: id-456\n"}},
	}}
	cli := NewCLI(sup)

	if _, err := cli.CreateIdentity(context.Background(), map[string]any{"email": "a@b.c"}, "employee", ""); err != nil {
		t.Fatalf("CreateIdentity() error = %v", err)
	}

	var identity map[string]any
	if err := json.Unmarshal([]byte(sup.calls[0].opts.Stdin), &identity); err != nil {
		t.Fatalf("stdin is not valid JSON: %v", err)
	}
	if identity["schema_id"] != "employee" {
		t.Errorf("schema_id = %v, want employee", identity["schema_id"])
	}
	if _, ok := identity["credentials"]; ok {
		t.Error("credentials set without a password")
	}
}

func TestCLIMigrateUp(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{
		{result: ExecResult{Stdout: "applied 3 migrations"}},
	}}
	cli := NewCLI(sup)

	out, err := cli.MigrateUp(context.Background(), "postgres://u:p@h/db", time.Minute)
	if err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if out != "applied 3 migrations" {
		t.Errorf("MigrateUp() = %q", out)
	}
	if got := sup.calls[0].opts.Timeout; got != time.Minute {
		t.Errorf("Timeout = %v, want 1m", got)
	}

	cmd := sup.calls[0].cmd
	if cmd[len(cmd)-1] != "up" {
		t.Errorf("cmd = %v, want trailing up", cmd)
	}
}

func TestCLIMigrateDownVersion(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{{result: ExecResult{}}}}
	cli := NewCLI(sup)

	if _, err := cli.MigrateDown(context.Background(), "dsn", "20240101.1", time.Minute); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	cmd := sup.calls[0].cmd
	if cmd[len(cmd)-1] != "20240101.1" {
		t.Errorf("cmd = %v, want trailing target version", cmd)
	}
}

func TestCLIMigrateStatusReadsStderr(t *testing.T) {
	// The migrate tool reports status on stderr.
	sup := &fakeSupervisor{results: []execScript{
		{result: ExecResult{Stdout: "", Stderr: "Applied At  Migration\n..."}},
	}}
	cli := NewCLI(sup)

	out, err := cli.MigrateStatus(context.Background(), "dsn")
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v", err)
	}
	if out != "Applied At  Migration\n..." {
		t.Errorf("MigrateStatus() = %q", out)
	}
}

func TestCLITimeoutPropagates(t *testing.T) {
	sup := &fakeSupervisor{results: []execScript{
		{err: ErrTimeout},
	}}
	cli := NewCLI(sup)

	_, err := cli.MigrateUp(context.Background(), "dsn", time.Second)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("MigrateUp() error = %v, want ErrTimeout", err)
	}
}
