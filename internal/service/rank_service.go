package service

import (
	"errors"
	"time"

	"redvital/internal/domain"
	"redvital/internal/models"
	"redvital/internal/repository"

	"gorm.io/gorm"
)

// RankChange records a promotion detected by EvaluateAndPromote.
type RankChange struct {
	From string // empty when the member had no rank
	To   string
}

// RankService qualifies members against the plan's thresholds. Promotions are
// append-only within a period; demotion happens only implicitly when the next
// period starts from zeroed accumulators.
type RankService struct {
	plan       *domain.Plan
	memberRepo *repository.MemberRepository
	rankRepo   *repository.RankRepository
	now        func() time.Time
}

func NewRankService(plan *domain.Plan, memberRepo *repository.MemberRepository, rankRepo *repository.RankRepository) *RankService {
	return &RankService{plan: plan, memberRepo: memberRepo, rankRepo: rankRepo, now: time.Now}
}

// CurrentRank returns the rank recorded for the member as of the period.
// ok is false for members with no recorded rank, who are excluded from level
// bonuses.
func (s *RankService) CurrentRank(db *gorm.DB, memberID, periodID uint) (domain.RankSpec, bool, error) {
	h, err := s.rankRepo.LatestAsOfPeriod(db, memberID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RankSpec{}, false, nil
		}
		return domain.RankSpec{}, false, err
	}
	r, ok := s.plan.RankByCode(h.RankCode)
	return r, ok, nil
}

// EvaluateAndPromote compares the member's accumulated volumes against the
// plan and records the highest satisfied rank when it exceeds the current
// one. Returns nil when nothing changed; calling twice with unchanged volumes
// is a no-op. Runs inside the caller's transaction.
func (s *RankService) EvaluateAndPromote(tx *gorm.DB, member *models.Member, periodID uint) (*RankChange, error) {
	best, ok := s.plan.HighestQualified(member.PersonalVolume, member.GroupVolume)
	if !ok {
		return nil, nil
	}
	currentPos := 0
	if cur, found := s.plan.RankByCode(member.RankCode); found {
		currentPos = cur.Position
	}
	if best.Position <= currentPos {
		return nil, nil
	}
	h := &models.RankHistory{
		MemberID:   member.ID,
		RankCode:   best.Code,
		Position:   best.Position,
		PeriodID:   periodID,
		AchievedAt: s.now(),
	}
	if err := s.rankRepo.AppendHistory(tx, h); err != nil {
		return nil, err
	}
	if err := s.memberRepo.UpdateRankCode(tx, member.ID, best.Code); err != nil {
		return nil, err
	}
	change := &RankChange{From: member.RankCode, To: best.Code}
	member.RankCode = best.Code
	return change, nil
}
