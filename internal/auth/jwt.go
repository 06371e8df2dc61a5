package auth

import (
	"errors"
	"strconv"
	"time"

	"redvital/config"
	"redvital/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// MemberClaims is the identity an access token carries. Rank and sponsor
// code are absent on purpose: they change without a re-login, so callers
// read them from the member row.
type MemberClaims struct {
	MemberID uint   `json:"member_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies the token pair for member sessions. Access and
// refresh tokens use separate secrets so one cannot stand in for the other.
type Issuer struct {
	cfg *config.JWTConfig
}

func NewIssuer(cfg *config.JWTConfig) *Issuer {
	return &Issuer{cfg: cfg}
}

// TokenPair issues an access token with the member's identity and a refresh
// token naming only the member ID.
func (i *Issuer) TokenPair(m *models.Member) (access, refresh string, err error) {
	now := time.Now()
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, MemberClaims{
		MemberID: m.ID,
		Email:    m.Email,
		Role:     m.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.cfg.Issuer,
		},
	}).SignedString([]byte(i.cfg.AccessSecret))
	if err != nil {
		return "", "", err
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(m.ID), 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.RefreshExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    i.cfg.Issuer,
	}).SignedString([]byte(i.cfg.RefreshSecret))
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func hs256Keyfunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}
}

// ParseAccess verifies an access token and returns the member identity.
func (i *Issuer) ParseAccess(tokenString string) (*MemberClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &MemberClaims{}, hs256Keyfunc(i.cfg.AccessSecret))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*MemberClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token and returns the member ID it names.
func (i *Issuer) ParseRefresh(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, hs256Keyfunc(i.cfg.RefreshSecret))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
