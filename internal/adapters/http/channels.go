package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/auth"
	"github.com/melodiia/voicerelay/internal/domain"
	"github.com/melodiia/voicerelay/internal/store"
)

// ChannelAPI exposes the channel and invitation records backing the
// authorization gate. These endpoints answer "who may enter room R"; the
// signaling itself lives on the websocket.
type ChannelAPI struct {
	Store store.Store
	IDs   auth.IdentitySource
}

func (a *ChannelAPI) identify(c *gin.Context) (domain.Identity, bool) {
	id, err := a.IDs.Identify(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication required"})
		return "", false
	}
	return id, true
}

func (a *ChannelAPI) Create(c *gin.Context) {
	id, ok := a.identify(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	ch, err := a.Store.CreateChannel(c.Request.Context(), req.Name, id)
	if err != nil {
		storeError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("creator", string(id)).Int64("channel", int64(ch.ID)).Msg("channel created")
	c.JSON(http.StatusCreated, ch)
}

func (a *ChannelAPI) List(c *gin.Context) {
	id, ok := a.identify(c)
	if !ok {
		return
	}
	chs, err := a.Store.MyChannels(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chs)
}

func (a *ChannelAPI) Get(c *gin.Context) {
	id, ok := a.identify(c)
	if !ok {
		return
	}
	chID, ok := channelParam(c)
	if !ok {
		return
	}
	ch, err := a.Store.Channel(c.Request.Context(), chID, id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (a *ChannelAPI) Delete(c *gin.Context) {
	id, ok := a.identify(c)
	if !ok {
		return
	}
	chID, ok := channelParam(c)
	if !ok {
		return
	}
	if err := a.Store.DeleteChannel(c.Request.Context(), chID, id); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "channel deleted"})
}

func (a *ChannelAPI) Invite(c *gin.Context) {
	id, ok := a.identify(c)
	if !ok {
		return
	}
	chID, ok := channelParam(c)
	if !ok {
		return
	}
	var req struct {
		Addressee string `json:"addressee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	inv, err := a.Store.CreateInvitation(c.Request.Context(), chID, id, domain.Identity(req.Addressee))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (a *ChannelAPI) Respond(c *gin.Context) {
	id, ok := a.identify(c)
	if !ok {
		return
	}
	invID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid invitation id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=accepted rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	inv, err := a.Store.RespondInvitation(c.Request.Context(), domain.InvitationID(invID), id, req.Status == "accepted")
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func channelParam(c *gin.Context) (domain.ChannelID, bool) {
	n, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid channel id"})
		return 0, false
	}
	return domain.ChannelID(n), true
}

func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "forbidden"})
	case errors.Is(err, store.ErrAlreadyResponded),
		errors.Is(err, domain.ErrChannelNameEmpty),
		errors.Is(err, domain.ErrChannelNameTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("store error")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}
