package usecase

import (
	"fmt"

	"github.com/polkiloo/routeshop/internal/config"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
)

// AuthUseCase issues and checks actor tokens used by the chat gateway.
type AuthUseCase struct {
	tokens     pkgAuth.Strategy
	operatorID int64
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(strategy pkgAuth.Strategy, cfg *config.Config) *AuthUseCase {
	return &AuthUseCase{tokens: strategy, operatorID: cfg.OperatorID}
}

// IssueToken signs a token for actorID. Operator scope is reserved for the configured operator.
func (u *AuthUseCase) IssueToken(actorID int64, scope pkgAuth.Scope) (string, error) {
	if actorID == 0 {
		return "", fmt.Errorf("%w: actor id is required", domainErrors.ErrValidation)
	}
	if scope == pkgAuth.ScopeOperator && actorID != u.operatorID {
		return "", fmt.Errorf("%w: %d is not the operator", domainErrors.ErrValidation, actorID)
	}
	return u.tokens.IssueToken(pkgAuth.Claims{ActorID: actorID, Scope: scope})
}

// ParseToken extracts the actor from provided token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// IsOperator reports whether claims belong to the configured operator.
func (u *AuthUseCase) IsOperator(claims pkgAuth.Claims) bool {
	return claims.Scope == pkgAuth.ScopeOperator && claims.ActorID == u.operatorID
}
