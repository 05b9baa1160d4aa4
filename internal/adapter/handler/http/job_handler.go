package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/scheduler"
	"github.com/flexpay/payment-service/internal/usecase"
)

// JobHandler exposes the recurring job registry and a manual trigger for the
// installment sweep.
type JobHandler struct {
	sched          *scheduler.Scheduler
	reconciliation *usecase.ReconciliationService
	logger         *zap.Logger
}

func NewJobHandler(sched *scheduler.Scheduler, reconciliation *usecase.ReconciliationService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		sched:          sched,
		reconciliation: reconciliation,
		logger:         logger,
	}
}

// GetJobs handles GET /jobs.
func (h *JobHandler) GetJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"jobs": h.sched.Status(),
	})
}

// TriggerReconciliation handles POST /jobs/reconcile. It runs the due
// installment sweep immediately instead of waiting for the next tick.
func (h *JobHandler) TriggerReconciliation(c echo.Context) error {
	h.logger.Info("Manual reconciliation triggered")

	report, err := h.reconciliation.ProcessDueInstallments(c.Request().Context(), time.Now())
	if err != nil {
		h.logger.Error("Manual reconciliation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, report)
}
