package store

import (
	"context"
	"strings"
	"time"

	"github.com/kwabenadarko/navicare/internal/providers"
)

// Subscription records a supporter registration, payable over Mobile Money.
type Subscription struct {
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	MoMoNumber string    `json:"momo_number"`
	AmountGhs  float64   `json:"amount_ghs"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists per-user saved providers and the subscription record.
type Store interface {
	SavedProviders(ctx context.Context, userID string) ([]providers.Record, error)
	// ToggleSaved saves the provider if absent and removes it if present.
	// It reports whether the provider is saved after the call.
	ToggleSaved(ctx context.Context, userID string, rec providers.Record) (bool, error)
	Subscription(ctx context.Context, userID string) (*Subscription, error)
	SaveSubscription(ctx context.Context, userID string, sub Subscription) error
	Close() error
}

// sameProvider matches records the way users think of them. Addresses and
// booking links drift, name plus phone is stable enough.
func sameProvider(a, b providers.Record) bool {
	return strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name)) &&
		strings.TrimSpace(a.Phone) == strings.TrimSpace(b.Phone)
}

func toggle(list []providers.Record, rec providers.Record) ([]providers.Record, bool) {
	for i, existing := range list {
		if sameProvider(existing, rec) {
			return append(list[:i], list[i+1:]...), false
		}
	}
	return append(list, rec), true
}
