// Package relay implements the signaling core of a voice channel: the room
// registry, the message router and the per-connection session lifecycle.
// Payloads are forwarded verbatim; the relay never looks inside them.
package relay

import (
	"encoding/json"
	"errors"

	"github.com/melodiia/voicerelay/internal/domain"
)

// Frame is one encoded wire message, ready to hand to a transport.
type Frame []byte

// Sink delivers one outbound Frame to one connection. It must not block:
// implementations return an error instead of waiting on a slow consumer.
// Owned by the transport adapter; the adapter closes it.
type Sink interface {
	TrySend(Frame) error
}

var ErrInvalidMessage = errors.New("invalid message")

// Kind is the closed set of inbound signaling message kinds. Anything the
// relay does not recognize maps to KindUnknown so dispatch stays a single
// switch over this type rather than raw strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindJoin
	KindOffer
	KindAnswer
	KindCandidate
	KindLeave
	KindMuteStatus
	KindRequestStatus
)

func ParseKind(s string) Kind {
	switch s {
	case "join":
		return KindJoin
	case "offer":
		return KindOffer
	case "answer":
		return KindAnswer
	case "candidate":
		return KindCandidate
	case "leave":
		return KindLeave
	case "mute-status":
		return KindMuteStatus
	case "request-status":
		return KindRequestStatus
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindJoin:
		return "join"
	case KindOffer:
		return "offer"
	case KindAnswer:
		return "answer"
	case KindCandidate:
		return "candidate"
	case KindLeave:
		return "leave"
	case KindMuteStatus:
		return "mute-status"
	case KindRequestStatus:
		return "request-status"
	default:
		return "unknown"
	}
}

// Envelope is the wire shape of a signaling message. From is stamped by the
// relay on the way out; any client-supplied value is discarded.
type Envelope struct {
	Type    string          `json:"type"`
	To      domain.Identity `json:"to,omitempty"`
	From    domain.Identity `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (e Envelope) Kind() Kind { return ParseKind(e.Type) }

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, ErrInvalidMessage
	}
	if env.Type == "" {
		return Envelope{}, ErrInvalidMessage
	}
	return env, nil
}

func userListFrame(users []domain.Identity) Frame {
	if users == nil {
		users = []domain.Identity{}
	}
	b, _ := json.Marshal(struct {
		Type  string            `json:"type"`
		Users []domain.Identity `json:"users"`
	}{Type: "user-list", Users: users})
	return b
}

func errorFrame(msg string) Frame {
	b, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "error", Message: msg})
	return b
}
