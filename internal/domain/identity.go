// Package domain contains entity types without logic, just meta-data.
package domain

// Identity is an opaque, stable reference to an authenticated participant.
// It is assigned outside the relay (user id from the auth layer, or a
// generated guest id) and never interpreted here.
type Identity string

// RoomID references a voice channel. It is authorized externally and maps
// 1:1 to a durable channel record.
type RoomID string
