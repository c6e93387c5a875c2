package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"leadtime/adapters/jira"
	"leadtime/adapters/postgres"
	"leadtime/app"
	"leadtime/domain/core"
	"leadtime/internal/analysis"
	"leadtime/internal/config"
	"leadtime/internal/workdays"
	"leadtime/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] configuration error: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	counter := workdays.NewCounterForWeek(cfg.Work.Week, nil)
	pipeline := app.NewPipelineService(jira.NewParser(), counter)
	forecaster := analysis.NewForecaster(core.NewHalflife(cfg.Forecast.HalflifeDays))
	forecast := app.NewForecastService(pipeline, forecaster)

	var store *postgres.Store
	if cfg.Database.URL != "" {
		store, err = postgres.Open(cfg.Database.URL)
		if err != nil {
			log.Fatalf("[API] database error: %v", err)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("[API] migration error: %v", err)
		}
		cancel()
	}

	server := ui.NewServer(pipeline, forecast, store, cfg.Feed.Source)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("[API] server error: %v", err)
	}
}
