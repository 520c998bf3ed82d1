package ports

import (
	"context"
	"time"

	"github.com/cultivo/cultivo/internal/domain"
)

// AuditRecorder records domain mutations as audit entries. All methods are
// best-effort: failures are logged inside the recorder and never surface to
// the caller, so none of them return an error.
type AuditRecorder interface {
	RecordCreate(ctx context.Context, actor domain.Actor, entityType, entityID, displayName string, snapshot domain.Snapshot, notes string)
	RecordUpdate(ctx context.Context, actor domain.Actor, entityType, entityID, displayName string, previous, next domain.Snapshot, notes string)
	RecordDelete(ctx context.Context, actor domain.Actor, entityType, entityID, displayName string, snapshot domain.Snapshot, notes string)
}

// TokenClaims carries the authenticated actor identity extracted from a token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   domain.UserRole
}

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateToken(user *domain.User) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}

// RateLimitService throttles request rates per key.
type RateLimitService interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Block(ctx context.Context, key string, duration time.Duration) error
	IsBlocked(ctx context.Context, key string) (bool, error)
}
