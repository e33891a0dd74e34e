// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/common/validation"
	"job-recommender/internal/recommender"
)

const (
	Banner = "Hybrid Job Recommendation API is Running!"

	// schemaTaskType names the registry schema the request body is checked against.
	schemaTaskType = "recommend-jobs"

	msgMissingFields     = "Missing required fields."
	msgNoRecommendations = "No recommendations found."
)

type Recommender interface {
	Recommend(ctx context.Context, req recommender.Request) (*recommender.Result, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is one dependency probed by /health.
type Check struct {
	Name   string
	Pinger Pinger
}

type Config struct {
	Address        string
	RequestTimeout time.Duration
}

type Server struct {
	echo        *echo.Echo
	recommender Recommender
	validator   *validation.Validator
	checks      []Check
	config      Config
	logger      logger.Logger
	ready       atomic.Bool
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func NewServer(cfg Config, rec Recommender, validator *validation.Validator, checks []Check, log logger.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		recommender: rec,
		validator:   validator,
		checks:      checks,
		config:      cfg,
		logger:      log.WithFields(map[string]interface{}{"component": "api"}),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(s.requestLogger)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/ready", s.handleReady)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.POST("/recommend", s.handleRecommend)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.logger.Info("http request", map[string]interface{}{
			"method":     c.Request().Method,
			"uri":        c.Request().RequestURI,
			"status":     c.Response().Status,
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  c.Response().Header().Get(echo.HeaderXRequestID),
		})
		return err
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// SetReady flips the /ready answer. The server starts not ready.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, Banner)
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "connected", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for _, check := range s.checks {
		if err := check.Pinger.Ping(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			if status == http.StatusOK {
				resp.Status = check.Name + " error: " + err.Error()
				status = http.StatusInternalServerError
			}
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	return c.JSON(status, resp)
}

func (s *Server) handleReady(c echo.Context) error {
	if !s.ready.Load() {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "starting"})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ready"})
}

func (s *Server) handleRecommend(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return s.invalid(c, err.Error())
	}

	if err := s.validator.Validate(schemaTaskType, body); err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			return s.invalid(c, verr.Details())
		}
		return s.invalid(c, err.Error())
	}

	var req recommender.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return s.invalid(c, err.Error())
	}

	ctx := c.Request().Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	res, err := s.recommender.Recommend(ctx, req)
	metrics.RecommendationRequests.WithLabelValues(metrics.SurfaceHTTP, recommender.Outcome(res, err)).Inc()
	if err != nil {
		code := apperrors.CodeOf(err)
		if code == apperrors.ErrCodeInvalidRequest {
			details := ""
			if stdErr, ok := apperrors.AsStandardError(err); ok {
				details = stdErr.Details
			}
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingFields, Details: details})
		}
		s.logger.Error("recommendation failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(code),
		})
		return c.JSON(apperrors.HTTPStatus(code), ErrorResponse{Error: err.Error()})
	}

	if len(res.Recommendations) == 0 {
		return c.JSON(apperrors.HTTPStatus(apperrors.ErrCodeNoRecommendations), MessageResponse{Message: msgNoRecommendations})
	}

	c.Response().Header().Set("X-Run-Id", res.RunID)
	return c.JSON(http.StatusOK, res.Recommendations)
}

func (s *Server) invalid(c echo.Context, details string) error {
	metrics.RecommendationRequests.WithLabelValues(metrics.SurfaceHTTP, metrics.OutcomeInvalid).Inc()
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingFields, Details: details})
}

func (s *Server) Start() error {
	s.logger.Info("starting http server", map[string]interface{}{"addr": s.config.Address})
	if err := s.echo.Start(s.config.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server", nil)
	return s.echo.Shutdown(ctx)
}
