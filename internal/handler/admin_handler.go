package handler

import (
	"net/http"

	"redvital/internal/domain"
	"redvital/internal/repository"
	"redvital/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	periodSvc  *service.PeriodService
	periodRepo *repository.PeriodRepository
	plan       *domain.Plan
}

func NewAdminHandler(periodSvc *service.PeriodService, periodRepo *repository.PeriodRepository, plan *domain.Plan) *AdminHandler {
	return &AdminHandler{periodSvc: periodSvc, periodRepo: periodRepo, plan: plan}
}

// ClosePeriod handles POST /admin/periods/close: manual trigger for the same
// close the scheduler runs monthly. Safe to call repeatedly.
func (h *AdminHandler) ClosePeriod(c *gin.Context) {
	if err := h.periodSvc.CloseCurrentPeriod(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "period close failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListPeriods handles GET /admin/periods.
func (h *AdminHandler) ListPeriods(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.periodRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list periods"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": list})
}

// Plan handles GET /admin/plan: the active compensation plan tables.
func (h *AdminHandler) Plan(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"direct_percent":      h.plan.DirectPercent,
		"fast_start_percents": h.plan.FastStartPercents,
		"ranks":               h.plan.Ranks,
	})
}
