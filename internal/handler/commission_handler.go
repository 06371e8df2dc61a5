package handler

import (
	"net/http"
	"strconv"

	"redvital/internal/middleware"
	"redvital/internal/repository"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	commissionRepo *repository.CommissionRepository
	rankRepo       *repository.RankRepository
	periodRepo     *repository.PeriodRepository
}

func NewCommissionHandler(commissionRepo *repository.CommissionRepository, rankRepo *repository.RankRepository, periodRepo *repository.PeriodRepository) *CommissionHandler {
	return &CommissionHandler{commissionRepo: commissionRepo, rankRepo: rankRepo, periodRepo: periodRepo}
}

func (h *CommissionHandler) periodID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Query("period_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_id is required"})
		return 0, false
	}
	return uint(v), true
}

// ListMine handles GET /me/commissions?period_id=.
func (h *CommissionHandler) ListMine(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	periodID, ok := h.periodID(c)
	if !ok {
		return
	}
	list, err := h.commissionRepo.ListByMemberPeriod(memberID, periodID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list commissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}

// ProjectedEarnings handles GET /me/earnings?period_id=: the sum of pending
// and paid commissions in the period.
func (h *CommissionHandler) ProjectedEarnings(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	periodID, ok := h.periodID(c)
	if !ok {
		return
	}
	total, err := h.commissionRepo.SumForMemberPeriod(memberID, periodID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute earnings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"period_id": periodID, "projected_earnings": total})
}

// RankHistory handles GET /me/rank-history.
func (h *CommissionHandler) RankHistory(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	list, err := h.rankRepo.HistoryForMember(memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rank history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank_history": list})
}
