package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handlers "github.com/flexpay/payment-service/internal/adapter/handler/http"
	"github.com/flexpay/payment-service/internal/config"
	"github.com/flexpay/payment-service/internal/scheduler"
	"github.com/flexpay/payment-service/internal/usecase"
	apperrors "github.com/flexpay/payment-service/pkg/errors"
)

// requestValidator adapts go-playground/validator to Echo's Validator
// interface.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo

	payments       *usecase.PaymentService
	reconciliation *usecase.ReconciliationService
	sched          *scheduler.Scheduler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	payments *usecase.PaymentService,
	reconciliation *usecase.ReconciliationService,
	sched *scheduler.Scheduler,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Errors that escape a handler are logged with their code and rendered
	// with a consistent JSON shape.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		httpErr := apperrors.ToHTTPError(err)
		if httpErr.Code >= http.StatusInternalServerError {
			apperrors.LogError(logger, err, "Unhandled request error",
				zap.String("path", c.Request().URL.Path))
		}
		if !c.Response().Committed {
			_ = c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:         cfg,
		logger:         logger,
		echo:           e,
		payments:       payments,
		reconciliation: reconciliation,
		sched:          sched,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	paymentHandler := handlers.NewPaymentHandler(s.payments, s.logger)
	jobHandler := handlers.NewJobHandler(s.sched, s.reconciliation, s.logger)

	v1 := s.echo.Group("/api/v1")

	payments := v1.Group("/payments")
	payments.POST("", paymentHandler.SubmitPayment)
	payments.GET("/:id", paymentHandler.GetPayment)
	payments.GET("/:id/installments", paymentHandler.GetInstallments)
	payments.POST("/:id/cancel", paymentHandler.CancelPayment)

	jobs := v1.Group("/jobs")
	jobs.GET("", jobHandler.GetJobs)
	jobs.POST("/reconcile", jobHandler.TriggerReconciliation)
}
