package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/config"
)

type Claims struct {
	AccountID int64  `json:"id"`
	Role      string `json:"role"`
	Name      string `json:"nome"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.JWTConfig
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	if cfg.Issuer == "" {
		cfg.Issuer = "oportunidades"
	}
	return &TokenService{config: cfg, now: time.Now}
}

func (s *TokenService) GenerateAccessToken(accountID int64, role, name string) (string, error) {
	now := s.now()
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// ValidateToken checks signature, algorithm and expiry. Every failure is
// reported as ErrInvalidToken.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.AccountID == 0 {
			return nil, fmt.Errorf("%w: missing account id", errors.ErrInvalidToken)
		}
		return claims, nil
	}

	return nil, errors.ErrInvalidToken
}
