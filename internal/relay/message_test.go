package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"join", KindJoin},
		{"offer", KindOffer},
		{"answer", KindAnswer},
		{"candidate", KindCandidate},
		{"leave", KindLeave},
		{"mute-status", KindMuteStatus},
		{"request-status", KindRequestStatus},
		{"dance", KindUnknown},
		{"", KindUnknown},
		{"JOIN", KindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseKind(tc.in), "kind of %q", tc.in)
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	kinds := []Kind{KindJoin, KindOffer, KindAnswer, KindCandidate, KindLeave, KindMuteStatus, KindRequestStatus}
	for _, k := range kinds {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"offer","to":"u2","payload":{"sdp":"v=0"}}`))
	require.NoError(t, err)
	assert.Equal(t, KindOffer, env.Kind())
	assert.Equal(t, "u2", string(env.To))
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(env.Payload))
}

func TestDecodeEnvelopeRejectsBadFrames(t *testing.T) {
	for _, raw := range []string{"", "not json", "[]", `{"to":"u2"}`, `{"type":""}`} {
		_, err := DecodeEnvelope([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidMessage, "frame %q", raw)
	}
}
