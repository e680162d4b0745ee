package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/cache"
	"github.com/shorecast/shorecast/internal/config"
	"github.com/shorecast/shorecast/internal/forecast"
	"github.com/shorecast/shorecast/internal/scheduler"
	"github.com/shorecast/shorecast/internal/secrets"
	"github.com/shorecast/shorecast/internal/tide"
	"github.com/shorecast/shorecast/internal/weather"
	"github.com/shorecast/shorecast/pkg/http/client"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude")
	lon := flag.Float64("lon", 0, "longitude")
	every := flag.Duration("every", 0, "refresh interval; when set, keeps running and refreshes on this interval")
	flag.Parse()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		log.Fatal().Msg("Coordinates out of range")
	}

	httpClient := client.New(client.Options{
		Timeout:     cfg.HTTPTimeout,
		MaxAttempts: cfg.MaxAttempts,
	})

	cacheConfig := config.GetCacheConfig()
	var dynamoCache *cache.DynamoTideCache
	if cacheConfig.EnableDynamoCache {
		dynamoClient, err := cache.NewDynamoClient(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Creating DynamoDB client")
		}
		dynamoCache = cache.NewDynamoTideCache(dynamoClient, cacheConfig)
	}

	tideCache, err := cache.NewTideCache(cacheConfig, dynamoCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating tide cache")
	}

	secretStore, err := secrets.NewSQLiteStore(cfg.SecretStorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Opening secret store")
	}
	defer func() {
		if closeErr := secretStore.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Closing secret store")
		}
	}()

	resolver := secrets.NewResolver(secretStore, cfg.TideSecretName, cfg.TideKeyEnvVar, cfg.BundledEnvPath)
	tideService := tide.NewService(httpClient, resolver, tideCache, cfg)
	weatherClient := weather.NewOpenMeteoClient(httpClient, cfg)
	forecastService := forecast.NewService(weatherClient, tideService)

	if *every > 0 {
		runScheduled(forecastService, *lat, *lon, *every)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	bundle, err := forecastService.Refresh(ctx, *lat, *lon)
	if err != nil {
		log.Fatal().Err(err).Msg("Refresh failed")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(bundle); err != nil {
		log.Fatal().Err(err).Msg("Encoding forecast")
	}
}

func runScheduled(service *forecast.Service, lat, lon float64, interval time.Duration) {
	locations := []scheduler.Location{{Latitude: lat, Longitude: lon}}
	sched := scheduler.New(locations, interval, service, nil)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Starting scheduler")
	}
	defer sched.Stop()

	log.Info().Dur("interval", interval).Msg("Refreshing on interval, Ctrl-C to stop")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
