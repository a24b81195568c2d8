package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

const (
	RoleUser  = "user"
	RoleAdmin = ctxutil.RoleAdmin
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService verifies bearer tokens issued by the session service.
// Tokens are HS256 with sub = user id and an optional role claim.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueAccessToken(userID uuid.UUID, role string) (string, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(log *logger.Logger, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func normalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// IssueAccessToken mints a token in the format SetContextFromToken accepts.
// Used by local tooling and tests; production tokens come from the session service.
func (as *authService) IssueAccessToken(userID uuid.UUID, role string) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id required")
	}
	if as.jwtSecretKey == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}
	now := time.Now()
	claims := JWTClaims{
		Role: normalizeRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, nil
	}
	if as.jwtSecretKey == "" {
		as.log.Warn("JWT secret not configured; rejecting token")
		return ctx, ErrInvalidToken
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        normalizeRole(claims.Role),
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
