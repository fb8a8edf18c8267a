package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/MattZaluski/SWETripPlanner/app/observability/metrics"
	"github.com/MattZaluski/SWETripPlanner/config"
	"github.com/MattZaluski/SWETripPlanner/internal/api"
	generativeAI "github.com/MattZaluski/SWETripPlanner/internal/api/generative_ai"
	"github.com/MattZaluski/SWETripPlanner/internal/api/geo"
	"github.com/MattZaluski/SWETripPlanner/internal/api/itinerary"
	"github.com/MattZaluski/SWETripPlanner/internal/api/places"
	"github.com/MattZaluski/SWETripPlanner/internal/api/planner"
	"github.com/MattZaluski/SWETripPlanner/internal/api/routing"
	"github.com/MattZaluski/SWETripPlanner/internal/api/weather"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/retry"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Store          *cache.Store
	PlannerHandler *planner.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	store := cache.New(cfg.Cache.Cleanup)
	rec := api.NewRecorder(metrics.Get())
	policy := retry.NewPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, cfg.Retry.Multiplier)

	geoService := geo.NewService(
		cfg.Providers.Geoapify.GeocodeURL,
		os.Getenv("GEOAPIFY_API_KEY"),
		cfg.Providers.Geoapify.Timeout,
		cfg.Cache.GeocodeTTL,
		store, rec, logger)

	placesService := places.NewService(
		cfg.Providers.Geoapify.PlacesURL,
		os.Getenv("GEOAPIFY_API_KEY"),
		cfg.Providers.Geoapify.Timeout,
		cfg.Cache.PlacesTTL,
		places.NewCategoryMapper(),
		store, policy, rec, logger)

	weatherService := weather.NewService(
		cfg.Providers.Weather.ForecastURL,
		cfg.Providers.Weather.Timeout,
		cfg.Cache.WeatherTTL,
		store, rec, logger)

	routingService := routing.NewService(
		cfg.Providers.Routing.DirectionsURL,
		os.Getenv("OPENROUTESERVICE_API_KEY"),
		cfg.Providers.Routing.Timeout,
		cfg.Cache.RoutingTTL,
		store,
		routing.NewEstimator(true),
		rec, logger)

	// Model providers are optional: planning degrades to heuristic scoring
	// when no completion client is configured.
	var llmClients []generativeAI.CompletionClient
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		llmClients = append(llmClients, generativeAI.NewOpenAIClient(
			cfg.Providers.OpenAI.URL, key, cfg.Providers.OpenAI.Model, cfg.Providers.OpenAI.Timeout))
	}
	if key := os.Getenv("GOOGLE_GEMINI_API_KEY"); key != "" {
		gemini, err := generativeAI.NewGeminiClient(ctx, key, cfg.Providers.Gemini.Model)
		if err != nil {
			logger.Warn("Failed to initialize Gemini client", slog.Any("error", err))
		} else {
			llmClients = append(llmClients, gemini)
		}
	}
	llm := generativeAI.NewFallbackClient(rec, logger, llmClients...)

	synthesizer := itinerary.NewService(llm, store, cfg.Cache.ScoringTTL, rec, logger)

	plannerService := planner.NewService(
		geoService,
		placesService,
		weatherService,
		routingService,
		synthesizer,
		cfg.Mode == "mock",
		rec, logger)

	plannerHandler := planner.NewHandlerImpl(plannerService, routingService, store, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		PlannerHandler: plannerHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Store != nil {
		c.Store.Clear()
	}
}
