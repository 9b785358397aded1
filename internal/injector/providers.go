// Package injector wires the demo simulation from a loaded config.
package injector

import (
	"errors"
	"fmt"

	"github.com/google/wire"
	"github.com/zeusync/climbforge/internal/config"
	"github.com/zeusync/climbforge/internal/core/observability/debugdraw"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/internal/core/sim"
	"github.com/zeusync/climbforge/internal/core/world/scene"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideWorld,
	ProvideStream,
	ProvideSimulation,
	wire.Struct(new(App), "*"),
)

type App struct {
	Log    *log.Logger
	World  *scene.Scene
	Stream *debugdraw.Stream
	Sim    *sim.Simulation
}

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideWorld() *scene.Scene {
	return sim.DemoCourse()
}

// ProvideStream returns nil when no debug address is configured.
func ProvideStream(cfg config.Config, logger *log.Logger) *debugdraw.Stream {
	if cfg.Debug.Addr == "" {
		return nil
	}
	return debugdraw.NewStream(cfg.Debug.Buffer, logger)
}

// ProvideSimulation creates one actor per demo script. Actors stream debug shapes when
// a stream is given.
func ProvideSimulation(cfg config.Config, logger *log.Logger, world *scene.Scene, stream *debugdraw.Stream) (*sim.Simulation, func(), error) {
	s := sim.New(logger, 0)
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Warn("simulation close failed", log.Error(err))
		}
	}
	err := addActors(s, sim.DemoActors(), func(opts sim.ActorOptions) (*sim.Actor, error) {
		opts.Stream = stream
		return sim.NewActor(cfg, world, opts, logger)
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("injector: %w", err)
	}
	return s, cleanup, nil
}

// addActors builds and registers each actor. An actor the simulation refuses is
// closed before returning.
func addActors(s *sim.Simulation, actors []sim.ActorOptions, build func(sim.ActorOptions) (*sim.Actor, error)) error {
	for _, opts := range actors {
		a, err := build(opts)
		if err != nil {
			return err
		}
		if err := s.Add(a); err != nil {
			return errors.Join(err, a.Close())
		}
	}
	return nil
}
