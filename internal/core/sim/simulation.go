package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/climbforge/internal/config"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/pkg/concurrent"
)

var ErrDuplicateActor = errors.New("sim: duplicate actor")

// Metrics provides simulation statistics.
type Metrics struct {
	Actors            int
	Ticks             uint64
	Errors            uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	LastUpdateTime    time.Time
}

// Simulation steps a set of independent actors. Actors share only the read-only world,
// so each step ticks them in parallel.
type Simulation struct {
	mu      sync.RWMutex
	actors  []*Actor
	names   map[string]struct{}
	workers int
	log     log.Log
	metrics Metrics
}

// New creates a simulation ticking at most workers actors at once, all of them when
// workers <= 0.
func New(logger log.Log, workers int) *Simulation {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Simulation{
		names:   make(map[string]struct{}),
		workers: workers,
		log:     logger,
	}
}

func (s *Simulation) Add(a *Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[a.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateActor, a.Name)
	}
	s.names[a.Name] = struct{}{}
	s.actors = append(s.actors, a)
	s.metrics.Actors = len(s.actors)
	return nil
}

func (s *Simulation) Actors() []*Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Actor, len(s.actors))
	copy(out, s.actors)
	return out
}

// Step ticks every actor once.
func (s *Simulation) Step(ctx context.Context, dt float64) error {
	if dt <= 0 {
		return ErrInvalidStep
	}
	actors := s.Actors()
	start := time.Now()
	err := concurrent.Each(ctx, actors, s.workers, func(_ context.Context, a *Actor) error {
		return a.Tick(dt)
	})
	elapsed := time.Since(start)

	s.mu.Lock()
	s.metrics.Ticks++
	s.metrics.TotalUpdateTime += elapsed
	s.metrics.AverageUpdateTime = s.metrics.TotalUpdateTime / time.Duration(s.metrics.Ticks)
	s.metrics.LastUpdateTime = start
	if err != nil {
		s.metrics.Errors++
	}
	s.mu.Unlock()
	return err
}

// Apply hands new tuning to every actor.
func (s *Simulation) Apply(cfg config.Config) error {
	var errs []error
	for _, a := range s.Actors() {
		if err := a.SetConfig(cfg); err != nil {
			errs = append(errs, fmt.Errorf("actor %s: %w", a.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Run steps at tickRate until ctx is done. Configs received on updates are applied
// between steps. onStep, when set, runs after every successful step.
func (s *Simulation) Run(ctx context.Context, tickRate int, updates <-chan config.Config, onStep func(tick uint64)) error {
	if tickRate <= 0 {
		return ErrInvalidStep
	}
	dt := 1 / float64(tickRate)
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	s.log.Info("simulation started", log.Int("actors", len(s.Actors())), log.Int("tick_rate", tickRate))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation stopped", log.Uint64("ticks", s.GetMetrics().Ticks))
			return nil
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if err := s.Apply(cfg); err != nil {
				s.log.Warn("config not applied", log.Error(err))
				continue
			}
			s.log.Info("config applied")
		case <-ticker.C:
			if err := s.Step(ctx, dt); err != nil {
				if ctx.Err() != nil {
					continue
				}
				return fmt.Errorf("sim: step: %w", err)
			}
			if onStep != nil {
				onStep(s.GetMetrics().Ticks)
			}
		}
	}
}

func (s *Simulation) GetMetrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Close releases every actor.
func (s *Simulation) Close() error {
	var errs []error
	for _, a := range s.Actors() {
		errs = append(errs, a.Close())
	}
	return errors.Join(errs...)
}
