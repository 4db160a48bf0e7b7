package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/adapters/signal"
	"github.com/melodiia/voicerelay/internal/auth"
	"github.com/melodiia/voicerelay/internal/config"
	"github.com/melodiia/voicerelay/internal/store"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins a random token to each browser. Guest mode
// uses it as the connection identity, so reconnects keep the same one.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, st store.Store, ids auth.IdentitySource) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VoiceSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("auth_mode", cfg.AuthMode).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/voice/:room", func(c *gin.Context) {
		ctl.HandleVoice(ctx, c)
	})

	channels := &ChannelAPI{Store: st, IDs: ids}
	api.POST("/channels", channels.Create)
	api.GET("/channels", channels.List)
	api.GET("/channels/:id", channels.Get)
	api.DELETE("/channels/:id", channels.Delete)
	api.POST("/channels/:id/invitations", channels.Invite)
	api.PATCH("/invitations/:id", channels.Respond)

	return r
}
