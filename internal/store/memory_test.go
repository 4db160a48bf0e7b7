package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodiia/voicerelay/internal/domain"
)

func TestCreateChannelValidation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.CreateChannel(ctx, "", "u1")
	assert.ErrorIs(t, err, domain.ErrChannelNameEmpty)

	_, err = m.CreateChannel(ctx, strings.Repeat("x", domain.MaxChannelNameLen+1), "u1")
	assert.ErrorIs(t, err, domain.ErrChannelNameTooLong)

	ch, err := m.CreateChannel(ctx, "band practice", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("u1"), ch.Creator)
	assert.Equal(t, []domain.Identity{"u1"}, ch.Participants, "creator auto-joins")
}

func TestChannelVisibility(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ch, err := m.CreateChannel(ctx, "band practice", "u1")
	require.NoError(t, err)

	got, err := m.Channel(ctx, ch.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, ch.Name, got.Name)

	_, err = m.Channel(ctx, ch.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound, "non-participants cannot see the channel")

	mine, err := m.MyChannels(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := m.MyChannels(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteChannel(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ch, err := m.CreateChannel(ctx, "band practice", "u1")
	require.NoError(t, err)

	inv, err := m.CreateInvitation(ctx, ch.ID, "u1", "u2")
	require.NoError(t, err)
	_, err = m.RespondInvitation(ctx, inv.ID, "u2", true)
	require.NoError(t, err)

	assert.ErrorIs(t, m.DeleteChannel(ctx, ch.ID, "u2"), ErrForbidden, "only the creator may delete")
	assert.ErrorIs(t, m.DeleteChannel(ctx, ch.ID, "u9"), ErrNotFound)
	require.NoError(t, m.DeleteChannel(ctx, ch.ID, "u1"))

	_, err = m.Channel(ctx, ch.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvitationFlow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ch, err := m.CreateChannel(ctx, "band practice", "u1")
	require.NoError(t, err)

	_, err = m.CreateInvitation(ctx, ch.ID, "u9", "u2")
	assert.ErrorIs(t, err, ErrNotFound, "outsiders cannot invite")

	inv, err := m.CreateInvitation(ctx, ch.ID, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, inv.Status)

	_, err = m.RespondInvitation(ctx, inv.ID, "u3", true)
	assert.ErrorIs(t, err, ErrNotFound, "only the addressee may respond")

	accepted, err := m.RespondInvitation(ctx, inv.ID, "u2", true)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, accepted.Status)

	_, err = m.RespondInvitation(ctx, inv.ID, "u2", false)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	got, err := m.Channel(ctx, ch.ID, "u2")
	require.NoError(t, err)
	assert.Contains(t, got.Participants, domain.Identity("u2"))
}

func TestAuthorize(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ch, err := m.CreateChannel(ctx, "band practice", "u1")
	require.NoError(t, err)
	room := ch.ID.Room()

	ok, err := m.Authorize(ctx, "u1", room)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Authorize(ctx, "u2", room)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.Authorize(ctx, "u1", "not-a-channel-id")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.Authorize(ctx, "u1", "99999")
	require.NoError(t, err)
	assert.False(t, ok)
}
