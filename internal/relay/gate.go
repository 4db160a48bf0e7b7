package relay

import (
	"context"

	"github.com/melodiia/voicerelay/internal/domain"
)

// Authorizer decides, once per connection attempt, whether an identity may
// enter a room. The relay consumes the answer; membership records live in
// the external store.
type Authorizer interface {
	Authorize(ctx context.Context, id domain.Identity, room domain.RoomID) (bool, error)
}

// AllowAll admits everyone. Used in guest mode, where identities are
// generated and no membership records exist.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, domain.Identity, domain.RoomID) (bool, error) {
	return true, nil
}
