package store

import (
	"context"
	"sync"
	"time"

	"github.com/melodiia/voicerelay/internal/domain"
)

// Memory is an in-process Store for guest deployments and tests.
type Memory struct {
	mu          sync.RWMutex
	channels    map[domain.ChannelID]*domain.Channel
	invitations map[domain.InvitationID]*domain.Invitation
	nextChannel domain.ChannelID
	nextInvite  domain.InvitationID
}

func NewMemory() *Memory {
	return &Memory{
		channels:    make(map[domain.ChannelID]*domain.Channel),
		invitations: make(map[domain.InvitationID]*domain.Invitation),
	}
}

func (m *Memory) CreateChannel(_ context.Context, name string, creator domain.Identity) (*domain.Channel, error) {
	if err := domain.ValidateChannelName(name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextChannel++
	ch := &domain.Channel{
		ID:           m.nextChannel,
		Name:         name,
		Creator:      creator,
		Participants: []domain.Identity{creator},
		CreatedAt:    time.Now(),
	}
	m.channels[ch.ID] = ch
	out := cloneChannel(ch)
	return &out, nil
}

func (m *Memory) Channel(_ context.Context, id domain.ChannelID, viewer domain.Identity) (*domain.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[id]
	if !ok || !participates(ch, viewer) {
		return nil, ErrNotFound
	}
	out := cloneChannel(ch)
	return &out, nil
}

func (m *Memory) MyChannels(_ context.Context, viewer domain.Identity) ([]domain.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Channel, 0)
	for _, ch := range m.channels {
		if participates(ch, viewer) {
			out = append(out, cloneChannel(ch))
		}
	}
	return out, nil
}

func (m *Memory) DeleteChannel(_ context.Context, id domain.ChannelID, caller domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok || !participates(ch, caller) {
		return ErrNotFound
	}
	if ch.Creator != caller {
		return ErrForbidden
	}
	delete(m.channels, id)
	for iid, inv := range m.invitations {
		if inv.Channel == id {
			delete(m.invitations, iid)
		}
	}
	return nil
}

func (m *Memory) CreateInvitation(_ context.Context, channel domain.ChannelID, sender, addressee domain.Identity) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channel]
	if !ok || !participates(ch, sender) {
		return nil, ErrNotFound
	}
	m.nextInvite++
	inv := &domain.Invitation{
		ID:        m.nextInvite,
		Channel:   channel,
		Sender:    sender,
		Addressee: addressee,
		Status:    domain.InvitationPending,
		CreatedAt: time.Now(),
	}
	m.invitations[inv.ID] = inv
	out := *inv
	return &out, nil
}

func (m *Memory) RespondInvitation(_ context.Context, id domain.InvitationID, caller domain.Identity, accept bool) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[id]
	if !ok || inv.Addressee != caller {
		return nil, ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return nil, ErrAlreadyResponded
	}
	if accept {
		inv.Status = domain.InvitationAccepted
		if ch, ok := m.channels[inv.Channel]; ok && !participates(ch, caller) {
			ch.Participants = append(ch.Participants, caller)
		}
	} else {
		inv.Status = domain.InvitationRejected
	}
	out := *inv
	return &out, nil
}

func (m *Memory) Authorize(_ context.Context, id domain.Identity, room domain.RoomID) (bool, error) {
	chID, err := domain.ParseChannelID(room)
	if err != nil {
		return false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[chID]
	return ok && participates(ch, id), nil
}

func (m *Memory) Close() {}

func participates(ch *domain.Channel, id domain.Identity) bool {
	for _, p := range ch.Participants {
		if p == id {
			return true
		}
	}
	return false
}

func cloneChannel(ch *domain.Channel) domain.Channel {
	out := *ch
	out.Participants = append([]domain.Identity(nil), ch.Participants...)
	return out
}
