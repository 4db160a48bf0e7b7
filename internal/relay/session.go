package relay

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/domain"
)

// State is the session lifecycle position. Joined is the only state in
// which anything other than a join frame is accepted.
type State int

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

// Session drives one authorized connection through the signaling protocol.
// It is the single writer of the registry entry for its connection: the
// entry appears on join and is removed exactly once, on leave or on Close.
type Session struct {
	room    domain.RoomID
	id      domain.Identity
	sink    Sink
	reg     *Registry
	router  *Router
	limiter *JoinLimiter
	log     zerolog.Logger

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
}

func NewSession(room domain.RoomID, id domain.Identity, sink Sink, reg *Registry, router *Router, limiter *JoinLimiter) *Session {
	return &Session{
		room:    room,
		id:      id,
		sink:    sink,
		reg:     reg,
		router:  router,
		limiter: limiter,
		log:     log.With().Str("module", "relay.session").Str("room", string(room)).Str("identity", string(id)).Logger(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleFrame processes one inbound frame. Malformed frames are dropped
// without a reply and without touching session state.
func (s *Session) HandleFrame(data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		invalidMessages.Inc()
		s.log.Debug().Msg("malformed frame dropped")
		return
	}

	kind := env.Kind()
	messages.WithLabelValues(kind.String()).Inc()

	switch kind {
	case KindJoin:
		s.handleJoin()
	case KindLeave:
		s.handleLeave()
	case KindOffer, KindAnswer, KindCandidate, KindMuteStatus, KindRequestStatus:
		s.handleSignal(env)
	default:
		s.log.Warn().Str("type", env.Type).Msg("unknown signal kind")
	}
}

func (s *Session) handleJoin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateJoined:
		// Duplicate client-side join retry, deliberately ignored.
		return
	case StateClosed:
		return
	}

	if s.limiter != nil && !s.limiter.Allow(s.id) {
		s.log.Warn().Msg("join rate exceeded")
		s.reply(errorFrame("join rate exceeded"))
		return
	}

	if !s.reg.Register(s.room, s.id, s.sink) {
		// Another live connection holds this (room, identity) slot. The
		// stale one, if it is in fact dead, vacates via its own cleanup.
		s.log.Warn().Msg("duplicate join rejected")
		s.reply(errorFrame("identity already connected"))
		return
	}
	s.state = StateJoined
	joins.Inc()

	s.reply(userListFrame(s.reg.ListOthers(s.room, s.id)))
	s.log.Info().Msg("joined")
}

func (s *Session) handleSignal(env Envelope) {
	s.mu.Lock()
	joined := s.state == StateJoined
	s.mu.Unlock()
	if !joined {
		// No registry entry to attribute this to yet.
		s.log.Debug().Str("type", env.Type).Msg("signal before join dropped")
		return
	}

	if err := s.router.Dispatch(s.room, s.id, env); errors.Is(err, ErrTargetNotFound) {
		s.reply(errorFrame("target not found"))
	}
}

// handleLeave vacates the room but keeps the transport open; a later join
// starts a fresh membership.
func (s *Session) handleLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoined {
		return
	}
	s.reg.Deregister(s.room, s.id)
	s.state = StateConnecting
	s.broadcastLeft()
	s.log.Info().Msg("left room")
}

// Close releases the registry entry. It runs on every transport exit path
// (graceful close, read error, forced teardown) and is safe to call more
// than once; only the first call after a join deregisters.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		wasJoined := s.state == StateJoined
		s.state = StateClosed
		if wasJoined {
			s.reg.Deregister(s.room, s.id)
			s.broadcastLeft()
		}
		s.mu.Unlock()
		s.log.Info().Bool("was_joined", wasJoined).Msg("session closed")
	})
}

// broadcastLeft tells the remaining members this identity is gone. The
// caller must already have deregistered, so the departing connection is
// never in its own delivery plan.
func (s *Session) broadcastLeft() {
	_ = s.router.Dispatch(s.room, s.id, Envelope{Type: "peer-left"})
}

func (s *Session) reply(frame Frame) {
	if err := s.sink.TrySend(frame); err != nil {
		s.log.Warn().Err(err).Msg("reply dropped")
	}
}
