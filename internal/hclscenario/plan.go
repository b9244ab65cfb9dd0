package hclscenario

import (
	"sync"

	"github.com/Azure/golden"
)

// RunSalvoPlan evaluates the configuration and collects every scenario block.
func RunSalvoPlan(c *SalvoConfig) (*SalvoPlan, error) {
	err := c.RunPlan()
	if err != nil {
		return nil, err
	}

	plan := newPlan(c)
	for _, sb := range golden.Blocks[*ScenarioBlock](c) {
		plan.addScenario(sb)
	}

	return plan, nil
}

func newPlan(c *SalvoConfig) *SalvoPlan {
	return &SalvoPlan{
		c: c,
	}
}

// SalvoPlan holds the evaluated scenario blocks from a configuration directory.
type SalvoPlan struct {
	Scenarios []*ScenarioBlock
	c         *SalvoConfig
	mu        sync.Mutex
}

func (p *SalvoPlan) addScenario(s *ScenarioBlock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scenarios = append(p.Scenarios, s)
}
