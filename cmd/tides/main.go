package main

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/api"
	"github.com/shorecast/shorecast/internal/cache"
	"github.com/shorecast/shorecast/internal/config"
	"github.com/shorecast/shorecast/internal/forecast"
	"github.com/shorecast/shorecast/internal/secrets"
	"github.com/shorecast/shorecast/internal/tide"
	"github.com/shorecast/shorecast/internal/weather"
	"github.com/shorecast/shorecast/pkg/http/client"
)

var (
	forecastService *forecast.Service
	setupOnce       sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

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

		// The lambda reads its credential from the environment; the memory
		// store only receives the backfill write.
		resolver := secrets.NewResolver(secrets.NewMemoryStore(), cfg.TideSecretName, cfg.TideKeyEnvVar, cfg.BundledEnvPath)

		tideService := tide.NewService(httpClient, resolver, tideCache, cfg)
		weatherClient := weather.NewOpenMeteoClient(httpClient, cfg)
		forecastService = forecast.NewService(weatherClient, tideService)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters
	log.Info().Msg("Handling forecast request")

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		var invalidCoordErr api.InvalidCoordinatesError
		if errors.As(err, &invalidCoordErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}

	bundle, err := forecastService.Refresh(ctx, lat, lon)
	if err != nil {
		log.Error().Err(err).Msg("Error getting forecast data")
		return api.Error("Error getting forecast data", http.StatusInternalServerError)
	}

	return api.Success(api.NewForecastResponse(bundle))
}

func main() {
	lambda.Start(handleRequest)
}
