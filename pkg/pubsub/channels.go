package pubsub

import "strings"

// ChannelRoomEvents carries every room lifecycle event.
const ChannelRoomEvents = "rooms:events"

// Room lifecycle event types.
const (
	EventRoomCreated      = "room.created"
	EventRoomUpdated      = "room.updated"
	EventRoomDeleted      = "room.deleted"
	EventRoomImageDeleted = "room.image_deleted"
)

// RoomEventPayload is the payload of every room lifecycle event.
type RoomEventPayload struct {
	RoomID     string   `json:"room_id"`
	RoomCode   string   `json:"room_code"`
	Branch     string   `json:"branch"`
	Status     string   `json:"status"`
	ImageCount int      `json:"image_count"`
	ImageURLs  []string `json:"image_urls,omitempty"`
}

// channelToTopic maps a channel name to a Kafka topic: "rooms:events" -> "rooms-events".
func channelToTopic(channel string) string {
	return strings.NewReplacer(":", "-", "_", "-").Replace(channel)
}
