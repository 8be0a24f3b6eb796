package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/isa-florenville/focustime-api/internal/models"
	"github.com/isa-florenville/focustime-api/pkg/config"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
)

type directoryReader interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

// AuthService verifies tokens issued by the external identity provider and
// resolves the directory-backed session identity. There is no local
// credential store: the provider owns authentication, this service only
// owns role resolution.
type AuthService struct {
	directory directoryReader
	logger    *zap.Logger
	config    config.AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(directory directoryReader, logger *zap.Logger, cfg config.AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{directory: directory, logger: logger, config: cfg}
}

// ValidateToken parses and validates a provider token returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.IdentityClaims, error) {
	options := []jwt.ParserOption{}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}
	if len(s.config.Audience) > 0 {
		options = append(options, jwt.WithAudience(s.config.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, options...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.IdentityClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no email")
	}

	return claims, nil
}

// ResolveIdentity looks the authenticated email up in the student directory
// and derives degree and role. An absent directory entry is not an error:
// the session proceeds with an unresolved degree and sees no activities.
func (s *AuthService) ResolveIdentity(ctx context.Context, claims *models.IdentityClaims) (models.Identity, error) {
	identity := models.Identity{
		Email:  claims.Email,
		Name:   claims.Name,
		Degree: models.DegreeUnresolved,
	}
	if identity.Name == "" {
		identity.Name = DeriveDisplayName(claims.Email)
	}

	student, err := s.directory.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			identity.Role = models.RoleStudent
			return identity, nil
		}
		return models.Identity{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student directory entry")
	}

	identity.Degree = student.Degree
	identity.Role = models.RoleForDegree(student.Degree)
	if identity.Name == "" && student.Name != "" {
		identity.Name = student.Name
	}
	return identity, nil
}
