package models

import "time"

// Realtime event names pushed to clients.
const (
	EventNewMessage     = "newMessage"
	EventGetOnlineUsers = "getOnlineUsers"
)

// UserPresence is the cluster-visible presence record kept in Redis.
type UserPresence struct {
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"` // online, offline
	LastSeen   time.Time `json:"last_seen"`
	InstanceID string    `json:"instance_id,omitempty"`
}

type StatusResponse struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
	IsOnline bool      `json:"is_online"`
	IsLocal  bool      `json:"is_local"`
}

type OnlineUsersResponse struct {
	Count   int            `json:"count"`
	Users   []string       `json:"users"`
	Cluster []UserPresence `json:"cluster,omitempty"`
}

// Event is the JSON frame written on a realtime connection.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
