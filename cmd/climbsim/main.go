package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/climbforge/internal/config"
	"github.com/zeusync/climbforge/internal/core/observability/log"
	"github.com/zeusync/climbforge/internal/injector"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (defaults to $"+config.EnvConfig+")")
	envFile := flag.String("env", ".env", "dotenv file with overrides")
	watch := flag.Bool("watch", false, "reload tuning when the config file changes")
	report := flag.Int("report", 60, "log actor state every n ticks, 0 disables")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		fmt.Println("Error loading env:", err)
		os.Exit(1)
	}
	path := config.Path(*configPath)
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Println("Error building simulation:", err)
		os.Exit(1)
	}
	defer cleanup()
	defer func() { _ = app.Log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopCh
		cancel()
	}()

	var updates <-chan config.Config
	if *watch && path != "" {
		w, err := config.Watch(path, app.Log)
		if err != nil {
			app.Log.Error("config watch failed", log.Error(err))
		} else {
			defer w.Close()
			updates = w.Updates
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return app.Sim.Run(ctx, cfg.Sim.TickRate, updates, func(tick uint64) {
			if *report <= 0 || tick%uint64(*report) != 0 {
				return
			}
			for _, a := range app.Sim.Actors() {
				st := a.State()
				app.Log.Info("actor state",
					log.String("actor", st.Name),
					log.String("mode", st.Mode.String()),
					log.Vec3("position", st.Position),
					log.Vec3("velocity", st.Velocity),
					log.String("pending", st.Pending),
				)
			}
		})
	})

	if app.Stream != nil {
		srv := &http.Server{Addr: cfg.Debug.Addr, Handler: app.Stream, ReadHeaderTimeout: 5 * time.Second}
		group.Go(func() error {
			if err := app.Stream.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			app.Log.Info("debug stream listening", log.String("addr", cfg.Debug.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := group.Wait(); err != nil {
		app.Log.Error("simulation failed", log.Error(err))
	}
	m := app.Sim.GetMetrics()
	app.Log.Info("simulation finished",
		log.Uint64("ticks", m.Ticks),
		log.Duration("average_update", m.AverageUpdateTime),
	)
}
