package signal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/auth"
	"github.com/melodiia/voicerelay/internal/config"
	"github.com/melodiia/voicerelay/internal/domain"
	"github.com/melodiia/voicerelay/internal/relay"
)

type Controller struct {
	cfg     *config.Config
	reg     *relay.Registry
	router  *relay.Router
	gate    relay.Authorizer
	ids     auth.IdentitySource
	limiter *relay.JoinLimiter
}

func NewController(cfg *config.Config, reg *relay.Registry, router *relay.Router, gate relay.Authorizer, ids auth.IdentitySource, limiter *relay.JoinLimiter) *Controller {
	return &Controller{
		cfg:     cfg,
		reg:     reg,
		router:  router,
		gate:    gate,
		ids:     ids,
		limiter: limiter,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleVoice authenticates and authorizes the caller for the room named in
// the path, then upgrades and runs the session pumps. Denial happens before
// the upgrade: a refused caller gets plain HTTP and never touches the
// registry.
func (ctl *Controller) HandleVoice(ctx context.Context, c *gin.Context) {
	room := domain.RoomID(c.Param("room"))

	id, err := ctl.ids.Identify(c)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", string(room)).Msg("identify failed")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ok, err := ctl.gate.Authorize(c.Request.Context(), id, room)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", string(room)).Msg("authorization gate")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if !ok {
		relay.AuthDenied()
		log.Warn().Str("module", "signal").Str("room", string(room)).Str("identity", string(id)).Msg("authorization denied")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("room", string(room)).Str("identity", string(id)).Msg("new WS connection")

	conn := newWSConn(ws, ctl.cfg.SendBuffer)
	sess := relay.NewSession(room, id, conn, ctl.reg, ctl.router, ctl.limiter)

	ctx, cancel := context.WithCancel(ctx)
	relay.ConnectionOpened()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
