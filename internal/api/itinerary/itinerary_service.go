package itinerary

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	generativeAI "github.com/MattZaluski/SWETripPlanner/internal/api/generative_ai"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

const (
	maxCandidates      = 20
	defaultTemperature = 0.7
)

// SynthesisRequest is one combined scoring + itinerary authoring call.
// A nil Window selects manual mode (ranked list); a window selects smart mode
// (time-scheduled).
type SynthesisRequest struct {
	Prefs      types.TripPreferences
	Activities []types.Activity
	Weather    *types.WeatherSnapshot
	Window     *types.TimeWindow
}

// SynthesisResult carries one canonical score per candidate plus the curated
// itinerary. Degraded marks the substituted default used when the model
// response could not be parsed.
type SynthesisResult struct {
	Scores    []types.ActivityScore
	Itinerary []types.ItineraryStop
	Degraded  bool
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service synthesizes activity scores and an itinerary in a single model
// call. Synthesize never fails: a bad model response degrades to neutral
// scores and an empty itinerary.
type Service interface {
	Synthesize(ctx context.Context, req SynthesisRequest) *SynthesisResult
}

type ServiceImpl struct {
	logger *slog.Logger
	llm    generativeAI.CompletionClient
	store  *cache.Store
	ttl    time.Duration
	rec    *api.Recorder
}

func NewService(llm generativeAI.CompletionClient, store *cache.Store, ttl time.Duration, rec *api.Recorder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		llm:    llm,
		store:  store,
		ttl:    ttl,
		rec:    rec,
	}
}

func (s *ServiceImpl) Synthesize(ctx context.Context, req SynthesisRequest) *SynthesisResult {
	ctx, span := otel.Tracer("ScoringSynthesizer").Start(ctx, "Synthesize", trace.WithAttributes(
		attribute.Int("synthesis.candidates", len(req.Activities)),
		attribute.Bool("synthesis.scheduled", req.Window != nil),
	))
	defer span.End()

	if len(req.Activities) > maxCandidates {
		req.Activities = req.Activities[:maxCandidates]
	}

	names := make([]string, 0, len(req.Activities))
	for _, a := range req.Activities {
		names = append(names, a.Name)
	}
	fingerprint := "none"
	if req.Weather != nil {
		fingerprint = req.Weather.Fingerprint()
	}
	key := cache.ScoringKey(req.Prefs, names, fingerprint, req.Window)
	if cached, ok := cache.Get[*SynthesisResult](s.store, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.rec.Cache(ctx, "scoring", true)
		return cached
	}
	s.rec.Cache(ctx, "scoring", false)

	prompt := buildSynthesisPrompt(req)
	start := time.Now()
	payload, err := s.llm.Complete(ctx, systemPrompt,
		[]generativeAI.Message{{Role: "user", Content: prompt}}, defaultTemperature)
	s.rec.Upstream(ctx, "llm", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Completion failed, substituting neutral scores", slog.Any("error", err))
		return s.degraded(req)
	}

	scores, stops, err := parseSynthesis(payload)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Unparseable model response, substituting neutral scores", slog.Any("error", err))
		return s.degraded(req)
	}

	result := &SynthesisResult{Scores: scores, Itinerary: stops}
	span.SetAttributes(
		attribute.Int("synthesis.scores", len(scores)),
		attribute.Int("synthesis.stops", len(stops)),
	)
	s.store.Set(key, result, s.ttl)
	return result
}

// degraded builds the substitute result: every candidate gets a neutral score
// and the itinerary stays empty. Never cached, so a later healthy call can
// replace it.
func (s *ServiceImpl) degraded(req SynthesisRequest) *SynthesisResult {
	scores := make([]types.ActivityScore, 0, len(req.Activities))
	for _, a := range req.Activities {
		scores = append(scores, types.ActivityScore{
			Name:    a.Name,
			Score:   defaultScore,
			Reason:  "Matches your stated preferences",
			Outdoor: heuristicOutdoor(a),
		})
	}
	return &SynthesisResult{Scores: scores, Itinerary: []types.ItineraryStop{}, Degraded: true}
}
