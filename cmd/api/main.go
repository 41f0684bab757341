package main

import (
	"log"

	"github.com/joho/godotenv"

	"gomonte/adapters/api"
	"gomonte/adapters/excel"
	"gomonte/adapters/rng"
	"gomonte/adapters/scenario"
	"gomonte/app"
	"gomonte/internal"
	"gomonte/internal/config"
	"gomonte/internal/estimator"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	service := app.NewSimulationService(
		estimator.New(rng.NewSeededAdapter()),
		excel.NewTableLoader(),
		scenario.NewStore(cfg.Scenario.Dir),
		app.Defaults{
			Trials:      cfg.Sim.DefaultTrials,
			Seed:        cfg.Sim.DefaultSeed,
			MaxTrials:   cfg.Sim.MaxTrials,
			MaxWorkers:  cfg.Sim.MaxWorkers,
			CodeVersion: cfg.Sim.CodeVersion,
		},
	)

	server := api.NewServer(service, api.Config{
		Port:           cfg.Server.Port,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, internal.NewDefaultLogger())

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
