package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"tool-market/internal/apperrors"
)

// AuthService issues and verifies access tokens. Verification is a pure
// signature and expiry check; it never consults a store.
type AuthService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthService(secret string, ttl time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secretKey: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

// Issue signs a token for email that expires after the configured TTL.
func (s *AuthService) Issue(email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperrors.New(apperrors.CodeValidation, "email is required to issue a token")
	}

	issuedAt := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", apperrors.Wrap(apperrors.CodeInternal, err, "sign token")
	}

	return tokenString, nil
}

// Verify returns the email embedded in a valid, unexpired token.
func (s *AuthService) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "missing token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.Wrap(apperrors.CodeUnauthenticated, err, "token expired")
		}
		return "", apperrors.Wrap(apperrors.CodeUnauthenticated, err, "invalid token")
	}

	if !token.Valid || claims.Email == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "invalid token")
	}

	return claims.Email, nil
}
