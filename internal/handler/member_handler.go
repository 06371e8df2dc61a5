package handler

import (
	"net/http"
	"strconv"

	"redvital/internal/middleware"
	"redvital/internal/repository"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberRepo    *repository.MemberRepository
	genealogyRepo *repository.GenealogyRepository
}

func NewMemberHandler(memberRepo *repository.MemberRepository, genealogyRepo *repository.GenealogyRepository) *MemberHandler {
	return &MemberHandler{memberRepo: memberRepo, genealogyRepo: genealogyRepo}
}

// Profile handles GET /me/profile.
func (h *MemberHandler) Profile(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	m, err := h.memberRepo.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// Upline handles GET /me/upline?max_depth=.
func (h *MemberHandler) Upline(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	maxDepth, _ := strconv.Atoi(c.DefaultQuery("max_depth", "0"))
	edges, err := h.genealogyRepo.GetUpline(memberID, maxDepth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upline"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upline": edges})
}

// Downline handles GET /me/downline: per-level counts plus the total, all
// straight off the closure table.
func (h *MemberHandler) Downline(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	edges, err := h.genealogyRepo.GetDownline(memberID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read downline"})
		return
	}
	levels := map[int]int{}
	for _, e := range edges {
		levels[e.Depth]++
	}
	c.JSON(http.StatusOK, gin.H{
		"total":  len(edges),
		"levels": levels,
	})
}
