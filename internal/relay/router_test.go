package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchUnicast(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	u2, u3 := &fakeSink{}, &fakeSink{}
	reg.Register("band-42", "u2", u2)
	reg.Register("band-42", "u3", u3)

	err := rt.Dispatch("band-42", "u1", Envelope{
		Type:    "offer",
		To:      "u2",
		From:    "spoofed", // client-supplied sender must be discarded
		Payload: json.RawMessage(`{"sdp":"v=0"}`),
	})
	require.NoError(t, err)

	require.Equal(t, 1, u2.count())
	assert.Equal(t, 0, u3.count(), "unicast must not leak to other members")

	got := u2.last(t)
	assert.Equal(t, "offer", got.Type)
	assert.Equal(t, "u1", string(got.From))
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(got.Payload))
}

func TestDispatchBroadcastExcludesSender(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	u1, u2, u3 := &fakeSink{}, &fakeSink{}, &fakeSink{}
	other := &fakeSink{}
	reg.Register("band-42", "u1", u1)
	reg.Register("band-42", "u2", u2)
	reg.Register("band-42", "u3", u3)
	reg.Register("band-7", "u9", other)

	err := rt.Dispatch("band-42", "u1", Envelope{
		Type:    "mute-status",
		Payload: json.RawMessage(`{"muted":true}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, u1.count(), "sender must not receive its own broadcast")
	assert.Equal(t, 1, u2.count())
	assert.Equal(t, 1, u3.count())
	assert.Equal(t, 0, other.count(), "broadcast must not cross rooms")

	got := u2.last(t)
	assert.Equal(t, "u1", string(got.From))
	assert.JSONEq(t, `{"muted":true}`, string(got.Payload))
}

func TestDispatchBroadcastToEmptyRoomIsNoOp(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	reg.Register("band-42", "u1", &fakeSink{})

	assert.NoError(t, rt.Dispatch("band-42", "u1", Envelope{Type: "mute-status"}))
}

func TestDispatchUnknownTarget(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	u2 := &fakeSink{}
	reg.Register("band-42", "u2", u2)

	err := rt.Dispatch("band-42", "u1", Envelope{Type: "offer", To: "ghost"})
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, 0, u2.count(), "nothing may be delivered on a failed lookup")
}

func TestDispatchOneDeadRecipientDoesNotStopOthers(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	dead := &fakeSink{fail: true}
	live1, live2 := &fakeSink{}, &fakeSink{}
	reg.Register("band-42", "u2", dead)
	reg.Register("band-42", "u3", live1)
	reg.Register("band-42", "u4", live2)

	err := rt.Dispatch("band-42", "u1", Envelope{Type: "candidate"})
	require.NoError(t, err, "delivery failures are swallowed, not surfaced")
	assert.Equal(t, 1, live1.count())
	assert.Equal(t, 1, live2.count())
}

func TestDispatchPerSenderOrdering(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	u2 := &fakeSink{}
	reg.Register("band-42", "u2", u2)

	for i := 0; i < 10; i++ {
		payload, _ := json.Marshal(map[string]int{"seq": i})
		require.NoError(t, rt.Dispatch("band-42", "u1", Envelope{Type: "candidate", To: "u2", Payload: payload}))
	}

	require.Equal(t, 10, u2.count())
	for i, frame := range u2.frames {
		var got struct {
			Payload struct {
				Seq int `json:"seq"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(frame, &got))
		assert.Equal(t, i, got.Payload.Seq)
	}
}
