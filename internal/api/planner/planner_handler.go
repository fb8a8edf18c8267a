package planner

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/MattZaluski/SWETripPlanner/internal/api"
	"github.com/MattZaluski/SWETripPlanner/internal/api/routing"
	"github.com/MattZaluski/SWETripPlanner/internal/cache"
	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

type HandlerImpl struct {
	service Service
	routing routing.Service
	store   *cache.Store
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, routingSvc routing.Service, store *cache.Store, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		routing: routingSvc,
		store:   store,
		logger:  logger,
	}
}

// planRequest is the wire form of a planning call. UseWeather is a pointer so
// an absent key means enabled.
type planRequest struct {
	StartingAddress string   `json:"starting_address"`
	Interests       []string `json:"interests"`
	Budget          string   `json:"budget"`
	TravelMode      string   `json:"travel_mode"`
	MaxDistance     float64  `json:"max_distance"`
	UseWeather      *bool    `json:"use_weather"`

	// Smart mode only.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

func (req planRequest) preferences() types.TripPreferences {
	useWeather := true
	if req.UseWeather != nil {
		useWeather = *req.UseWeather
	}
	return types.TripPreferences{
		StartingAddress: req.StartingAddress,
		Interests:       req.Interests,
		Budget:          types.BudgetTier(req.Budget),
		TravelMode:      types.TravelMode(req.TravelMode),
		MaxDistanceMi:   req.MaxDistance,
		UseWeather:      useWeather,
	}
}

// PlanTrip handles POST /api/v1/trips/plan.
func (h *HandlerImpl) PlanTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "PlanTrip")
	defer span.End()

	l := h.logger.With(slog.String("handler", "PlanTrip"))

	var req planRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.PlanTrip(ctx, req.preferences())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Planning failed")
		l.ErrorContext(ctx, "Planning failed", slog.Any("error", err))
		api.ErrorResponse(w, r, statusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// PlanTripSmart handles POST /api/v1/trips/plan/smart.
func (h *HandlerImpl) PlanTripSmart(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "PlanTripSmart")
	defer span.End()

	l := h.logger.With(slog.String("handler", "PlanTripSmart"))

	var req planRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.StartTime == nil || req.EndTime == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	if !req.EndTime.After(*req.StartTime) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	window := types.TimeWindow{Start: *req.StartTime, End: *req.EndTime}
	plan, err := h.service.PlanTripSmart(ctx, req.preferences(), window)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Planning failed")
		l.ErrorContext(ctx, "Smart planning failed", slog.Any("error", err))
		api.ErrorResponse(w, r, statusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

type routeRequest struct {
	Waypoints []types.Coordinate `json:"waypoints"`
	Mode      string             `json:"mode"`
}

// CalculateRoute handles POST /api/v1/routes.
func (h *HandlerImpl) CalculateRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "CalculateRoute")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CalculateRoute"))

	var req routeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Waypoints) < 2 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "at least 2 waypoints are required")
		return
	}
	for _, wp := range req.Waypoints {
		if !wp.Valid() {
			api.ErrorResponse(w, r, http.StatusBadRequest, "waypoint coordinate out of range")
			return
		}
	}

	route, err := h.routing.CalculateRoute(ctx, req.Waypoints, types.TravelMode(req.Mode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Route calculation failed")
		l.ErrorContext(ctx, "Route calculation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, route)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *HandlerImpl) CacheStats(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, h.store.Stats())
}

// ClearCaches handles DELETE /api/v1/cache.
func (h *HandlerImpl) ClearCaches(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	h.logger.InfoContext(r.Context(), "All caches cleared")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// statusForError maps the fatal pipeline errors onto HTTP statuses. Only the
// two geocoding conditions surface to callers; everything else degrades
// inside the pipeline, so anything left is an internal failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrMissingCredential):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
