package interceptor

import (
	"context"
	"sync"
	"time"

	"github.com/stageflow/stageflow/models"
	"github.com/stageflow/stageflow/stageerrors"
)

type breakerState int

const (
	closed breakerState = iota
	open
	halfOpen
)

type breaker struct {
	mu          sync.Mutex
	state       breakerState
	failures    int
	openedAt    time.Time
	cooldown    time.Duration
	threshold   int
}

// CircuitBreaker maintains one failure counter per stage name. BeforeStage
// rejects with CIRCUIT_OPEN while the breaker for the current stage is open;
// AfterStage/OnError record outcomes and mutate breaker state.
//
// The counter is not a time window: it accumulates failures until an OK
// output resets it. The key is always the stage name (reported as both
// operation and provider in CircuitOpenError); ports are not consulted.
type CircuitBreaker struct {
	Base
	Threshold int
	Cooldown  time.Duration

	mu       sync.Mutex
	breakers map[string]*breaker
}

// NewCircuitBreaker builds a breaker that opens after threshold consecutive
// failures and stays open for cooldown before allowing a half-open probe.
func NewCircuitBreaker(priority, threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		Base:      Base{NameValue: "circuit_breaker", PriorityValue: priority},
		Threshold: threshold,
		Cooldown:  cooldown,
		breakers:  map[string]*breaker{},
	}
}

func (c *CircuitBreaker) keyFor(ictx *InterceptorContext) string {
	return ictx.StageName
}

func (c *CircuitBreaker) breakerFor(key string) *breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[key]
	if !ok {
		b = &breaker{threshold: c.Threshold, cooldown: c.Cooldown}
		c.breakers[key] = b
	}
	return b
}

func (c *CircuitBreaker) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	b := c.breakerFor(c.keyFor(ictx))
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case open:
		if time.Since(b.openedAt) >= b.cooldown {
			b.state = halfOpen
			return BeforeResult{Action: Continue}, nil
		}
		return BeforeResult{
			Action: FailStage,
			Err:    (&stageerrors.CircuitOpenError{Operation: ictx.StageName, Provider: ictx.StageName}).Error(),
		}, nil
	default:
		return BeforeResult{Action: Continue}, nil
	}
}

func (c *CircuitBreaker) AfterStage(_ context.Context, ictx *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	b := c.breakerFor(c.keyFor(ictx))
	b.mu.Lock()
	defer b.mu.Unlock()

	if output.Status == models.StatusOK {
		b.failures = 0
		b.state = closed
		return output, nil
	}
	if output.Status == models.StatusFail {
		c.recordFailureLocked(b)
	}
	return output, nil
}

func (c *CircuitBreaker) OnError(_ context.Context, ictx *InterceptorContext, _ error) (ErrorResult, error) {
	b := c.breakerFor(c.keyFor(ictx))
	b.mu.Lock()
	defer b.mu.Unlock()
	c.recordFailureLocked(b)
	return ErrorResult{Action: Propagate}, nil
}

// recordFailureLocked must be called with b.mu held.
func (c *CircuitBreaker) recordFailureLocked(b *breaker) {
	b.failures++
	if b.failures >= b.threshold {
		b.state = open
		b.openedAt = time.Now()
	}
}
