package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/config"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

// IdentityService verifies access tokens minted by the external identity
// provider. Sessions and credentials live outside this service.
type IdentityService struct {
	secret []byte
	parser *jwt.Parser
	logger *zap.Logger
}

// NewIdentityService builds the verifier from JWT settings.
func NewIdentityService(cfg config.JWTConfig, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	for _, aud := range cfg.Audience {
		opts = append(opts, jwt.WithAudience(aud))
	}
	return &IdentityService{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...), logger: logger}
}

// ValidateToken parses and verifies a bearer token into actor claims.
func (s *IdentityService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.logger.Debug("rejected access token", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !claims.Role.Elevated() && claims.DivisionID == 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing division")
	}
	return claims, nil
}
