package domain

import "time"

type InvitationID int64

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

type Invitation struct {
	ID        InvitationID     `json:"id"`
	Channel   ChannelID        `json:"channel_id"`
	Sender    Identity         `json:"sender"`
	Addressee Identity         `json:"addressee"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
