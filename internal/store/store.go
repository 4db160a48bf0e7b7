// Package store owns the durable side of voice channels: the channel and
// invitation records that decide who may enter which room. The relay only
// consumes the Authorize answer.
package store

import (
	"context"
	"errors"

	"github.com/melodiia/voicerelay/internal/domain"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyResponded = errors.New("invitation already responded")
)

type Store interface {
	// CreateChannel creates a channel; the creator becomes its first
	// participant.
	CreateChannel(ctx context.Context, name string, creator domain.Identity) (*domain.Channel, error)

	// Channel returns a channel the viewer participates in, ErrNotFound
	// otherwise (non-participants cannot tell a channel exists).
	Channel(ctx context.Context, id domain.ChannelID, viewer domain.Identity) (*domain.Channel, error)

	// MyChannels lists every channel the viewer participates in.
	MyChannels(ctx context.Context, viewer domain.Identity) ([]domain.Channel, error)

	// DeleteChannel removes a channel. Only the creator may.
	DeleteChannel(ctx context.Context, id domain.ChannelID, caller domain.Identity) error

	// CreateInvitation invites addressee into a channel the sender
	// participates in.
	CreateInvitation(ctx context.Context, channel domain.ChannelID, sender, addressee domain.Identity) (*domain.Invitation, error)

	// RespondInvitation resolves a pending invitation addressed to the
	// caller. Accepting adds the caller to the channel's participants.
	RespondInvitation(ctx context.Context, id domain.InvitationID, caller domain.Identity, accept bool) (*domain.Invitation, error)

	// Authorize reports whether the identity participates in the channel
	// behind the room. This is the relay's authorization gate.
	Authorize(ctx context.Context, id domain.Identity, room domain.RoomID) (bool, error)

	Close()
}
