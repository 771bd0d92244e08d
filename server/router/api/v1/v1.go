package v1

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai/event"
	"github.com/hrygo/agenda/plugin/caldav"
	apierrors "github.com/hrygo/agenda/server/internal/errors"
	"github.com/hrygo/agenda/server/internal/observability"
	"github.com/hrygo/agenda/server/middleware"
	"github.com/hrygo/agenda/server/timezone"
	"github.com/hrygo/agenda/store"
)

// APIV1Service serves the event API under /api/v1.
type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Extractor *event.Extractor
	// Publisher is optional; when set, parsed events are pushed to CalDAV.
	Publisher *caldav.Publisher
	Metrics   *observability.Metrics

	location *time.Location
	// llmSemaphore limits concurrent LLM extractions.
	llmSemaphore *semaphore.Weighted
	rateLimiter  *middleware.RateLimiter
	now          func() time.Time
}

// NewAPIV1Service creates the service. extractor may be nil, in which case
// parsing reports LLM_UNAVAILABLE and the rest of the API keeps working.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, extractor *event.Extractor, metrics *observability.Metrics) *APIV1Service {
	loc, err := profile.Location()
	if err != nil {
		slog.Warn("invalid timezone in profile, using UTC", slog.String("error", err.Error()))
		loc = time.UTC
	}
	concurrency := profile.LLMConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &APIV1Service{
		Profile:      profile,
		Store:        store,
		Extractor:    extractor,
		Metrics:      metrics,
		location:     loc,
		llmSemaphore: semaphore.NewWeighted(int64(concurrency)),
		rateLimiter:  middleware.NewRateLimiter(middleware.DefaultRate, middleware.DefaultBurst),
		now:          func() time.Time { return timezone.NowInTimezone(loc) },
	}
}

// RunCleanup drops idle rate limiter state until ctx is done.
func (s *APIV1Service) RunCleanup(ctx context.Context) {
	s.rateLimiter.Run(ctx, middleware.DefaultSweepInterval)
}

// RegisterRoutes registers the API routes on echoServer.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1", middleware.RateLimit(s.rateLimiter, func(c echo.Context) error {
		return writeError(c, apierrors.RateLimitExceeded("too many requests"))
	}))

	g.POST("/events/parse", s.instrument("parse", s.ParseEvent))
	g.POST("/events/resolve", s.instrument("resolve", s.ResolveEvent))
	g.GET("/events", s.instrument("list", s.ListEvents))
	g.GET("/events/:uid", s.instrument("get", s.GetEvent))
	g.DELETE("/events/:uid", s.instrument("delete", s.DeleteEvent))
	g.GET("/events/:uid/ics", s.instrument("ics", s.GetEventICS))
	g.GET("/feed", s.instrument("feed", s.GetFeed))
	g.DELETE("/cache", s.instrument("purge_cache", s.PurgeCache))
}

// newRequestContext reuses the X-Request-ID already set on the response,
// generating and setting one when absent.
func newRequestContext(c echo.Context, operation string, textLength int) *observability.RequestContext {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return observability.NewRequestContextWithID(slog.Default(), id, operation, textLength)
	}
	rc := observability.NewRequestContext(slog.Default(), operation, textLength)
	c.Response().Header().Set(echo.HeaderXRequestID, rc.RequestID)
	return rc
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// instrument renders handler errors as JSON and records request metrics.
func (s *APIV1Service) instrument(operation string, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := h(c)
		code := "OK"
		if err != nil {
			apiErr := apierrors.FromError(err)
			code = string(apiErr.Code)
			if apiErr.Code == apierrors.ErrCodeInternal {
				slog.Error("request failed",
					slog.String(observability.LogFieldOperation, operation),
					slog.String("error", err.Error()))
			}
			err = writeError(c, apiErr)
		}
		s.Metrics.RecordRequest(operation, code, time.Since(start))
		return err
	}
}

func writeError(c echo.Context, apiErr *apierrors.APIError) error {
	return c.JSON(apiErr.HTTPStatus(), errorResponse{Code: string(apiErr.Code), Message: apiErr.Message})
}
