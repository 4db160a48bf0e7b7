// Package signalclient is a small typed client for the voicerelay
// websocket protocol. The relay treats payloads as opaque bytes; this
// package is where Go callers (and the integration tests) put real shapes
// behind them.
package signalclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
)

// Message mirrors the relay's wire envelope plus the reply-only fields
// (user-list and error).
type Message struct {
	Type    string          `json:"type"`
	To      string          `json:"to,omitempty"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Users   []string        `json:"users,omitempty"`
	Text    string          `json:"message,omitempty"`
}

// SessionDescription decodes an offer/answer payload.
func (m Message) SessionDescription() (webrtc.SessionDescription, error) {
	var sd webrtc.SessionDescription
	err := json.Unmarshal(m.Payload, &sd)
	return sd, err
}

// ICECandidate decodes a candidate payload.
func (m Message) ICECandidate() (webrtc.ICECandidateInit, error) {
	var ci webrtc.ICECandidateInit
	err := json.Unmarshal(m.Payload, &ci)
	return ci, err
}

type Client struct {
	conn *websocket.Conn
}

// Dial connects to a relay websocket endpoint, e.g.
// ws://host/api/ws/voice/42?token=...
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// SetReadDeadline bounds the next Next call.
func (c *Client) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

func (c *Client) Send(m Message) error { return c.conn.WriteJSON(m) }

// Next blocks for the next message from the relay.
func (c *Client) Next() (Message, error) {
	var m Message
	err := c.conn.ReadJSON(&m)
	return m, err
}

func (c *Client) Join() error  { return c.Send(Message{Type: "join"}) }
func (c *Client) Leave() error { return c.Send(Message{Type: "leave"}) }

func (c *Client) Offer(to string, sd webrtc.SessionDescription) error {
	return c.sendPayload("offer", to, sd)
}

func (c *Client) Answer(to string, sd webrtc.SessionDescription) error {
	return c.sendPayload("answer", to, sd)
}

func (c *Client) Candidate(to string, ci webrtc.ICECandidateInit) error {
	return c.sendPayload("candidate", to, ci)
}

func (c *Client) MuteStatus(muted bool) error {
	return c.sendPayload("mute-status", "", map[string]bool{"muted": muted})
}

func (c *Client) RequestStatus(to string) error {
	return c.Send(Message{Type: "request-status", To: to})
}

func (c *Client) sendPayload(kind, to string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.Send(Message{Type: kind, To: to, Payload: b})
}
