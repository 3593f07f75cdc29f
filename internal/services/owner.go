package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerResolver decides who owns a newly created appliance.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, actor *uuid.UUID) (uuid.UUID, error)
}

// FallbackLookup finds the process-wide default owner. found is false when no
// such user exists.
type FallbackLookup func(ctx context.Context) (id uuid.UUID, found bool, err error)

// DefaultOwnerResolver resolves owners in a fixed order: the acting user, then
// the fallback lookup, then ErrOwnerUnresolved.
type DefaultOwnerResolver struct {
	fallback FallbackLookup
}

func NewDefaultOwnerResolver(fallback FallbackLookup) *DefaultOwnerResolver {
	return &DefaultOwnerResolver{fallback: fallback}
}

func (r *DefaultOwnerResolver) ResolveOwner(ctx context.Context, actor *uuid.UUID) (uuid.UUID, error) {
	if actor != nil && *actor != uuid.Nil {
		return *actor, nil
	}
	if r == nil || r.fallback == nil {
		return uuid.Nil, ErrOwnerUnresolved
	}

	id, found, err := r.fallback(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: default owner lookup: %v", ErrStoreUnavailable, err)
	}
	if !found || id == uuid.Nil {
		return uuid.Nil, ErrOwnerUnresolved
	}
	return id, nil
}

// UserEmailLookup returns a FallbackLookup that finds the default owner by
// e-mail. An empty e-mail disables the fallback.
func UserEmailLookup(db *gorm.DB, email string) FallbackLookup {
	return func(ctx context.Context) (uuid.UUID, bool, error) {
		if email == "" {
			return uuid.Nil, false, nil
		}
		var user models.User
		err := db.WithContext(ctx).Select("id").Where("email = ?", email).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("default owner not found", "email", email)
			return uuid.Nil, false, nil
		}
		if err != nil {
			return uuid.Nil, false, err
		}
		return user.ID, true, nil
	}
}
