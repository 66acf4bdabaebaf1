package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type SessionRepository interface {
	LoadCart(ctx context.Context, sessionID string) (domain.Cart, error)

	// SaveCart replaces the stored cart; an empty cart removes it
	SaveCart(ctx context.Context, sessionID string, cart domain.Cart) error

	// PopCart atomically reads and removes the cart
	PopCart(ctx context.Context, sessionID string) (domain.Cart, error)

	SetFlash(ctx context.Context, sessionID, message string) error

	// PopFlash returns the pending status message once, "" when there is none
	PopFlash(ctx context.Context, sessionID string) (string, error)
}
