// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/salvo/internal/volley"
)

const (
	// DefaultConcurrent is the concurrency limit used when a scenario does not set one.
	DefaultConcurrent = 10
	// DefaultTotal is the invocation count used when a scenario does not set one.
	DefaultTotal = 100
)

var (
	// ErrInvalidYaml is returned when a document cannot be parsed as YAML.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrNoCommand is returned when a scenario has no command line.
	ErrNoCommand = errors.New("no command specified")
	// ErrInvalidConcurrent is returned when the concurrency limit is less than one.
	ErrInvalidConcurrent = errors.New("concurrent must be at least 1")
	// ErrInvalidTotal is returned when the total invocation count is negative.
	ErrInvalidTotal = errors.New("total must not be negative")
	// ErrInvalidTimeout is returned when the invocation timeout is negative.
	ErrInvalidTimeout = errors.New("invocation_timeout must not be negative")
	// ErrInvalidFailureRate is returned when the failure rate threshold is outside [0, 1].
	ErrInvalidFailureRate = errors.New("max_failure_rate must be between 0 and 1")
)

// Definition is the YAML shape of a scenario. Optional numeric fields are
// pointers so an omitted value and an explicit zero stay distinguishable.
type Definition struct {
	Name              string            `yaml:"name"`
	Description       string            `yaml:"description"`
	Command           string            `yaml:"command"`
	Concurrent        *int              `yaml:"concurrent"`
	Total             *int              `yaml:"total"`
	InvocationTimeout *time.Duration    `yaml:"invocation_timeout"`
	Env               map[string]string `yaml:"env"`
	Cwd               string            `yaml:"cwd"`
	MaxFailureRate    *float64          `yaml:"max_failure_rate"`
}

// RunConfig is the resolved form of a Definition with defaults applied.
// A negative MaxFailureRate means no threshold is enforced.
type RunConfig struct {
	Label          string
	Command        string
	Concurrent     int
	Total          int
	Timeout        time.Duration // 0 disables the per-invocation timeout
	Env            map[string]string
	Cwd            string
	MaxFailureRate float64
}

// EnforcesFailureRate reports whether the run should exit nonzero when the
// failure rate exceeds the configured threshold.
func (c *RunConfig) EnforcesFailureRate() bool {
	return c.MaxFailureRate >= 0
}

// Load validates a YAML scenario document against the embedded schema and
// resolves it into a RunConfig.
func Load(data []byte) (*RunConfig, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	return def.Resolve()
}

// Resolve applies defaults and validates the definition. Validation problems
// are aggregated so a caller sees every defect at once.
func (d *Definition) Resolve() (*RunConfig, error) {
	var errs *multierror.Error

	command := strings.TrimSpace(d.Command)
	if command == "" {
		errs = multierror.Append(errs, ErrNoCommand)
	}

	cfg := &RunConfig{
		Label:          d.Name,
		Command:        command,
		Concurrent:     DefaultConcurrent,
		Total:          DefaultTotal,
		Timeout:        volley.DefaultInvocationTimeout,
		Env:            d.Env,
		Cwd:            d.Cwd,
		MaxFailureRate: -1,
	}

	if cfg.Label == "" {
		cfg.Label = command
	}

	if d.Concurrent != nil {
		cfg.Concurrent = *d.Concurrent
	}

	if d.Total != nil {
		cfg.Total = *d.Total
	}

	if d.InvocationTimeout != nil {
		cfg.Timeout = *d.InvocationTimeout
	}

	if d.MaxFailureRate != nil {
		cfg.MaxFailureRate = *d.MaxFailureRate
	}

	if cfg.Concurrent < 1 {
		errs = multierror.Append(errs, fmt.Errorf("%w: got %d", ErrInvalidConcurrent, cfg.Concurrent))
	}

	if cfg.Total < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: got %d", ErrInvalidTotal, cfg.Total))
	}

	if cfg.Timeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	if d.MaxFailureRate != nil && (*d.MaxFailureRate < 0 || *d.MaxFailureRate > 1) {
		errs = multierror.Append(errs, fmt.Errorf("%w: got %v", ErrInvalidFailureRate, *d.MaxFailureRate))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return cfg, nil
}
