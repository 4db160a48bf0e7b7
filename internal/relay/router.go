package relay

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/domain"
)

var ErrTargetNotFound = errors.New("target not found")

// Router resolves a signaling message to its recipients and delivers it.
// It holds no state of its own beyond the registry reference.
type Router struct {
	reg *Registry
}

func NewRouter(reg *Registry) *Router {
	return &Router{reg: reg}
}

// Dispatch stamps the sender onto the envelope and forwards it: to the
// single target when `to` is set, otherwise to every other member of the
// room. A broadcast into an otherwise empty room is a silent no-op; only an
// unresolvable target is reported back to the caller.
func (rt *Router) Dispatch(room domain.RoomID, sender domain.Identity, env Envelope) error {
	env.From = sender
	frame, err := json.Marshal(env)
	if err != nil {
		return ErrInvalidMessage
	}

	if env.To != "" {
		sink, ok := rt.reg.Lookup(room, env.To)
		if !ok {
			return ErrTargetNotFound
		}
		rt.deliver(room, env.To, sink, frame)
		return nil
	}

	for _, p := range rt.reg.Peers(room, sender) {
		rt.deliver(room, p.ID, p.Sink, frame)
	}
	return nil
}

// deliver hands one frame to one recipient. Failures are counted and logged
// only; one gone or slow recipient never affects the rest of the plan or
// the sender.
func (rt *Router) deliver(room domain.RoomID, to domain.Identity, sink Sink, frame Frame) {
	if err := sink.TrySend(frame); err != nil {
		deliveryFailures.Inc()
		log.Warn().Err(err).Str("module", "relay.router").Str("room", string(room)).Str("to", string(to)).Msg("delivery dropped")
		return
	}
	deliveries.Inc()
}
