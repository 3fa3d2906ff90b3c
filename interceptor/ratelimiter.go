package interceptor

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/stageerrors"
)

// RateLimiter is a hardening-family interceptor that caps how often a given
// stage may start, using golang.org/x/time/rate's token bucket. Exceeding
// the limit fails fast with a CIRCUIT_OPEN error (provider "rate_limiter")
// rather than blocking the run.
type RateLimiter struct {
	Base
	Limit rate.Limit
	Burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter builds a RateLimiter allowing `limit` stage-starts per
// second per stage name, with burst capacity.
func NewRateLimiter(priority int, limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		Base:     Base{NameValue: "rate_limiter", PriorityValue: priority},
		Limit:    limit,
		Burst:    burst,
		limiters: map[string]*rate.Limiter{},
	}
}

func (r *RateLimiter) limiterFor(stage string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[stage]
	if !ok {
		l = rate.NewLimiter(r.Limit, r.Burst)
		r.limiters[stage] = l
	}
	return l
}

func (r *RateLimiter) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	if !r.limiterFor(ictx.StageName).Allow() {
		events.Emit(ictx.Sink, "stream.chunk_dropped", ictx.PipelineRunID, map[string]any{"stage": ictx.StageName, "reason": "rate_limited"})
		return BeforeResult{
			Action: FailStage,
			Err:    (&stageerrors.CircuitOpenError{Operation: ictx.StageName, Provider: "rate_limiter"}).Error(),
		}, nil
	}
	return BeforeResult{Action: Continue}, nil
}
