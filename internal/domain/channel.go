package domain

import (
	"errors"
	"strconv"
	"time"
)

const MaxChannelNameLen = 255

var (
	ErrChannelNameEmpty   = errors.New("channel name empty")
	ErrChannelNameTooLong = errors.New("channel name too long")
)

type ChannelID int64

// Room returns the RoomID under which this channel's members signal.
func (id ChannelID) Room() RoomID {
	return RoomID(strconv.FormatInt(int64(id), 10))
}

// ParseChannelID resolves a RoomID back to the durable channel it names.
func ParseChannelID(room RoomID) (ChannelID, error) {
	n, err := strconv.ParseInt(string(room), 10, 64)
	if err != nil {
		return 0, err
	}
	return ChannelID(n), nil
}

type Channel struct {
	ID           ChannelID  `json:"id"`
	Name         string     `json:"name"`
	Creator      Identity   `json:"creator"`
	Participants []Identity `json:"participants"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ValidateChannelName(name string) error {
	if len(name) == 0 {
		return ErrChannelNameEmpty
	}
	if len(name) > MaxChannelNameLen {
		return ErrChannelNameTooLong
	}
	return nil
}
