package audiofx

import (
	"sync"
	"time"

	"github.com/mkuoppala/audiofx/internal/dsp"
	"github.com/mkuoppala/audiofx/internal/errors"
)

// Priority is advisory scheduling metadata for a chain. It is consumed by
// the overload monitor only; chains are never reordered by priority.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParsePriority converts a configuration string to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "critical":
		return PriorityCritical, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityMedium, errors.Newf("unknown priority: %s", s).
			Component("audiofx").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// LatencyMode is the advisory per-block processing time budget of a chain,
// used only for overload reporting.
type LatencyMode int

const (
	LatencyUltraLow LatencyMode = iota // 5 ms
	LatencyLow                         // 10 ms
	LatencyMedium                      // 20 ms
	LatencyHigh                        // 50 ms
)

// Budget returns the per-block processing time budget.
func (m LatencyMode) Budget() time.Duration {
	switch m {
	case LatencyUltraLow:
		return 5 * time.Millisecond
	case LatencyLow:
		return 10 * time.Millisecond
	case LatencyMedium:
		return 20 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}

func (m LatencyMode) String() string {
	switch m {
	case LatencyUltraLow:
		return "ultra_low"
	case LatencyLow:
		return "low"
	case LatencyMedium:
		return "medium"
	case LatencyHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseLatencyMode converts a configuration string to a LatencyMode.
func ParseLatencyMode(s string) (LatencyMode, error) {
	switch s {
	case "ultra_low":
		return LatencyUltraLow, nil
	case "low":
		return LatencyLow, nil
	case "medium":
		return LatencyMedium, nil
	case "high":
		return LatencyHigh, nil
	default:
		return LatencyMedium, errors.Newf("unknown latency mode: %s", s).
			Component("audiofx").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// Chain is an ordered, named list of effects with advisory priority and
// latency metadata. Effects are not shared between chains.
type Chain struct {
	id          string
	name        string
	priority    Priority
	latencyMode LatencyMode

	mu      sync.RWMutex
	effects []dsp.Effect
	enabled bool
}

// NewChain creates an enabled chain with no effects.
func NewChain(id, name string, priority Priority, latencyMode LatencyMode) *Chain {
	return &Chain{
		id:          id,
		name:        name,
		priority:    priority,
		latencyMode: latencyMode,
		enabled:     true,
	}
}

func (c *Chain) ID() string               { return c.id }
func (c *Chain) Name() string             { return c.name }
func (c *Chain) Priority() Priority       { return c.priority }
func (c *Chain) LatencyMode() LatencyMode { return c.latencyMode }

// AddEffect appends an effect to the chain.
func (c *Chain) AddEffect(effect dsp.Effect) error {
	if effect == nil {
		return errors.Newf("effect cannot be nil").
			Component("audiofx").
			Category(errors.CategoryValidation).
			Build()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.effects = append(c.effects, effect)
	return nil
}

// Effects returns the effects in order.
func (c *Chain) Effects() []dsp.Effect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]dsp.Effect, len(c.effects))
	copy(out, c.effects)
	return out
}

func (c *Chain) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

func (c *Chain) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Process runs the block through every effect in sequence. Disabled or
// bypassed effects pass the block through unchanged. The input slice is not
// modified; the returned slice may alias an effect's scratch buffer.
func (c *Chain) Process(block []float32) []float32 {
	c.mu.RLock()
	effects := c.effects
	c.mu.RUnlock()

	cur := block
	for _, effect := range effects {
		cur = effect.Process(cur)
	}
	return cur
}

// Reset clears the state of every effect in the chain.
func (c *Chain) Reset() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, effect := range c.effects {
		effect.Reset()
	}
}
