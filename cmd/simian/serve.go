package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openmetaversefoundation/simian-sub002/pkg/config"
	"github.com/openmetaversefoundation/simian-sub002/pkg/ingress"
	"github.com/openmetaversefoundation/simian-sub002/pkg/persist"
	"github.com/openmetaversefoundation/simian-sub002/pkg/phys"
	"github.com/openmetaversefoundation/simian-sub002/pkg/pubsub"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
	"github.com/openmetaversefoundation/simian-sub002/pkg/terrain"
	"github.com/openmetaversefoundation/simian-sub002/pkg/watchdog"
)

func loadTerrain(settings config.TerrainSettings) (*terrain.Terrain, error) {
	var ground *terrain.Terrain
	if settings.Snapshot != "" {
		loaded, err := terrain.Load(settings.Snapshot)
		if err != nil {
			return nil, err
		}
		ground = loaded
		log.Info().Str("path", settings.Snapshot).Msg("loaded terrain snapshot")
	} else {
		ground = terrain.NewFlat(settings.Width, settings.Height, settings.CellSize)
	}

	if settings.WaterHeight != nil {
		ground.SetWaterHeight(*settings.WaterHeight)
	}

	return ground, nil
}

func serve(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.FromFile(configPath)
	} else {
		cfg, err = config.GetSimianConfig()
	}
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ground, err := loadTerrain(cfg.Terrain)
	if err != nil {
		return err
	}

	sc := scene.NewScene()

	dog := watchdog.New(log.Logger)
	go dog.Watch(ctx)

	sim := phys.New(
		sc,
		ground,
		phys.WithTargetFPS(cfg.Simulator.TargetFPS),
		phys.WithLogger(log.Logger),
		phys.WithHeartbeat(func() {
			dog.Beat("physics")
		}),
	)

	if cfg.Persist.Enabled {
		db, err := persist.InitDB(cfg.Persist.Path)
		if err != nil {
			return err
		}

		persister := persist.New(db, sc, log.Logger)
		restored, err := persister.Restore()
		if err != nil {
			return err
		}
		log.Info().Int("entities", restored).Msg("restored scene")

		interval := time.Duration(cfg.Simulator.FlushInterval) * time.Second
		dog.Go(ctx, "persist", func(ctx context.Context) {
			persister.Run(ctx, interval)
		})
	}

	if cfg.Redis.Enabled {
		publisher := pubsub.NewPublisher(cfg.Redis, cfg.Simulator.RegionName, log.Logger)
		defer publisher.Close()
		publisher.Attach(ctx, sc)
	}

	sim.Start()
	defer sim.Stop()

	log.Info().
		Str("region", cfg.Simulator.RegionName).
		Int("port", cfg.Ingress.Web.Port).
		Msg("simulator running")

	server := ingress.NewWSIngress(sc, sim, cfg.Ingress, cfg.Simulator.RegionName, log.Logger)
	return server.Serve(ctx, cfg.Ingress.Web.Port)
}
