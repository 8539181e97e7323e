// Package plan computes the desired service plan for the Admin UI workload
// from the validated configuration and integration snapshots.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	adminuiv1beta1 "github.com/identity-platform/adminui-operator/api/v1beta1"
)

// DefaultPort is the port the Admin UI listens on unless configured otherwise.
const DefaultPort = 8080

// Recognized workload log levels.
var validLogLevels = map[string]bool{
	"info":    true,
	"debug":   true,
	"warning": true,
	"error":   true,
}

// Config is the validated workload configuration, read once at the start of
// each reconciliation pass.
type Config struct {
	LogLevel string
	Port     int32
	CPU      string
	Memory   string
}

// ConfigFromSpec validates the configurable part of the spec. An
// unrecognized log level is rejected before any planning happens.
func ConfigFromSpec(spec adminuiv1beta1.AdminUISpec) (Config, error) {
	logLevel := spec.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	if !validLogLevels[logLevel] {
		return Config{}, fmt.Errorf("invalid log level %q (must be one of info, debug, warning, error)", spec.LogLevel)
	}

	port := spec.Port
	if port == 0 {
		port = DefaultPort
	}

	if spec.CPU != "" {
		if _, err := resource.ParseQuantity(spec.CPU); err != nil {
			return Config{}, fmt.Errorf("invalid cpu limit %q: %w", spec.CPU, err)
		}
	}
	if spec.Memory != "" {
		if _, err := resource.ParseQuantity(spec.Memory); err != nil {
			return Config{}, fmt.Errorf("invalid memory limit %q: %w", spec.Memory, err)
		}
	}

	return Config{
		LogLevel: logLevel,
		Port:     port,
		CPU:      spec.CPU,
		Memory:   spec.Memory,
	}, nil
}

// EnvVars returns the environment variables derived from configuration.
// These take precedence over integration-derived values.
func (c Config) EnvVars() map[string]string {
	return map[string]string{
		"LOG_LEVEL": strings.ToUpper(c.LogLevel),
		"DEBUG":     strconv.FormatBool(c.LogLevel == "debug"),
		"PORT":      strconv.Itoa(int(c.Port)),
	}
}
