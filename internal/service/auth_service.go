package service

import (
	"errors"

	"redvital/internal/auth"
	"redvital/internal/domain"
	"redvital/internal/models"
	"redvital/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidCreds    = errors.New("invalid email or password")
	ErrInvalidRefresh  = errors.New("invalid refresh token")
	ErrSponsorNotFound = errors.New("sponsor code not found")
	ErrSponsorRequired = errors.New("a sponsor code is required")
)

// AuthService registers members into the genealogy and issues tokens.
type AuthService struct {
	issuer        *auth.Issuer
	db            *gorm.DB
	memberRepo    *repository.MemberRepository
	walletRepo    *repository.WalletRepository
	genealogyRepo *repository.GenealogyRepository
}

func NewAuthService(issuer *auth.Issuer, db *gorm.DB, memberRepo *repository.MemberRepository, walletRepo *repository.WalletRepository, genealogyRepo *repository.GenealogyRepository) *AuthService {
	return &AuthService{
		issuer:        issuer,
		db:            db,
		memberRepo:    memberRepo,
		walletRepo:    walletRepo,
		genealogyRepo: genealogyRepo,
	}
}

type RegisterInput struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Country     string `json:"country" binding:"required,len=2"`
	Currency    string `json:"currency" binding:"required,len=3"`
	SponsorCode string `json:"sponsor_code"`
}

// Register creates the member, their wallet and their full ancestor chain in
// one transaction; a member never exists without complete genealogy edges.
// An empty sponsor code is accepted only for the first (root) member.
func (s *AuthService) Register(in RegisterInput) (*models.Member, error) {
	if _, err := s.memberRepo.GetByEmail(in.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var sponsorID *uint
	if in.SponsorCode != "" {
		sponsor, err := s.memberRepo.GetBySponsorCode(in.SponsorCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSponsorNotFound
			}
			return nil, err
		}
		sponsorID = &sponsor.ID
	} else {
		var count int64
		if err := s.db.Model(&models.Member{}).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSponsorRequired
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	m := &models.Member{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Role:           domain.RoleMember,
		SponsorID:      sponsorID,
		Country:        in.Country,
		Currency:       in.Currency,
		PersonalVolume: decimal.Zero,
		GroupVolume:    decimal.Zero,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.memberRepo.Create(tx, m); err != nil {
			return err
		}
		if err := s.genealogyRepo.AddMember(tx, m.ID, sponsorID); err != nil {
			return err
		}
		return s.walletRepo.Create(tx, &models.Wallet{
			MemberID: m.ID,
			Balance:  decimal.Zero,
			Currency: in.Currency,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Login verifies credentials and returns access and refresh tokens.
func (s *AuthService) Login(email, password string) (*models.Member, string, string, error) {
	m, err := s.memberRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, refresh, err := s.issuer.TokenPair(m)
	if err != nil {
		return nil, "", "", err
	}
	return m, access, refresh, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The member
// row is re-read so the new access token carries the current role.
func (s *AuthService) Refresh(refreshToken string) (*models.Member, string, string, error) {
	id, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, "", "", ErrInvalidRefresh
	}
	m, err := s.memberRepo.GetByID(id)
	if err != nil {
		return nil, "", "", ErrInvalidRefresh
	}
	access, refresh, err := s.issuer.TokenPair(m)
	if err != nil {
		return nil, "", "", err
	}
	return m, access, refresh, nil
}
