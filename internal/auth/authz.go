package auth

import "github.com/maxxlamenaace/roomio-be/internal/models"

// IsRoomHost reports whether the requester owns the room. Only the host
// may update or delete a room; callers must refuse the operation when
// this returns false.
func IsRoomHost(requesterID string, room models.Room) bool {
	return requesterID == room.HostID
}

// IsMessageSender reports whether the requester authored the message.
// Only the author may delete a message.
func IsMessageSender(requesterID string, message models.Message) bool {
	return requesterID == message.UserID
}
