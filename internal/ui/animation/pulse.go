// Package animation runs timed attention cues for the UI.
package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains pulse timing values. A burst is Pulses on/off flashes,
// followed by a Rest before the next burst.
type Config struct {
	OnDuration  Range
	OffDuration Range
	Pulses      int
	Rest        Range
}

// DefaultConfig returns the timing used by the checkpoint prompt.
func DefaultConfig() Config {
	return Config{
		OnDuration: Range{
			Min: 350 * time.Millisecond,
			Max: 450 * time.Millisecond,
		},
		OffDuration: Range{
			Min: 250 * time.Millisecond,
			Max: 300 * time.Millisecond,
		},
		Pulses: 3,
		Rest: Range{
			Min: 4 * time.Second,
			Max: 6 * time.Second,
		},
	}
}

// Engine toggles a highlight on and off until stopped.
type Engine struct {
	mu     sync.Mutex
	config Config
	apply  func(highlighted bool)
	cancel context.CancelFunc
	done   chan struct{}
	rng    *rand.Rand
}

// New creates an engine. apply is called from the engine goroutine.
func New(config Config, apply func(highlighted bool)) *Engine {
	if config.Pulses <= 0 {
		config.Pulses = 1
	}
	return &Engine{
		config: config,
		apply:  apply,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins pulsing, replacing any running sequence.
func (engine *Engine) Start(ctx context.Context) {
	engine.Stop()

	engine.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		defer engine.apply(false)
		engine.run(runCtx)
	}()
}

// Stop terminates the running sequence and waits for the highlight to clear.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel, done := engine.cancel, engine.done
	engine.cancel = nil
	engine.done = nil
	engine.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a sequence is active.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.cancel != nil
}

func (engine *Engine) run(ctx context.Context) {
	for {
		for pulse := 0; pulse < engine.config.Pulses; pulse++ {
			engine.apply(true)
			if !sleepWithContext(ctx, engine.random(engine.config.OnDuration)) {
				return
			}
			engine.apply(false)
			if !sleepWithContext(ctx, engine.random(engine.config.OffDuration)) {
				return
			}
		}
		if !sleepWithContext(ctx, engine.random(engine.config.Rest)) {
			return
		}
	}
}

func (engine *Engine) random(value Range) time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return value.Random(engine.rng)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
