package hclscenario

import (
	"fmt"
	"time"

	"github.com/Azure/golden"
	"github.com/matt-FFFFFF/salvo/internal/scenario"
)

var _ golden.ApplyBlock = (*ScenarioBlock)(nil)

// ScenarioBlock is one `scenario` block in a `.salvo.hcl` file. Attribute
// values may use variables, locals and HCL expressions.
type ScenarioBlock struct {
	*golden.BaseBlock
	ScenarioName      string            `hcl:"name"`
	Description       string            `hcl:"description,optional"`
	Command           string            `hcl:"command"`
	Concurrent        *int              `hcl:"concurrent,optional"`
	Total             *int              `hcl:"total,optional"`
	InvocationTimeout string            `hcl:"invocation_timeout,optional"`
	Env               map[string]string `hcl:"env,optional"`
	Cwd               string            `hcl:"cwd,optional"`
	MaxFailureRate    *float64          `hcl:"max_failure_rate,optional"`
}

func (b *ScenarioBlock) Type() string {
	return ""
}

func (b *ScenarioBlock) BlockType() string {
	return "scenario"
}

func (b *ScenarioBlock) AddressLength() int {
	return 2
}

func (b *ScenarioBlock) CanExecutePrePlan() bool {
	return false
}

func (b *ScenarioBlock) Apply() error {
	// Scenario blocks carry configuration only; execution happens in the run command.
	return nil
}

func (b *ScenarioBlock) Address() string {
	return "scenario." + b.ScenarioName
}

// ToRunConfig resolves the block into a run configuration, applying the same
// defaults and validation as YAML scenarios.
func (b *ScenarioBlock) ToRunConfig() (*scenario.RunConfig, error) {
	def := &scenario.Definition{
		Name:           b.ScenarioName,
		Description:    b.Description,
		Command:        b.Command,
		Concurrent:     b.Concurrent,
		Total:          b.Total,
		Env:            b.Env,
		Cwd:            b.Cwd,
		MaxFailureRate: b.MaxFailureRate,
	}

	if b.InvocationTimeout != "" {
		d, err := time.ParseDuration(b.InvocationTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", scenario.ErrInvalidTimeout, err)
		}

		def.InvocationTimeout = &d
	}

	return def.Resolve()
}
