package server

import (
	"errors"
	"fmt"
	"log"

	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/hub"
	"github.com/stoicapp/roomchat/internal/stats"
	"github.com/stoicapp/roomchat/internal/types"
)

// ErrForbidden is returned when the session user may not act on the
// requested destination.
var ErrForbidden = errors.New("forbidden")

const messageNotificationTitle = "New Message"

// Coordinator orchestrates a chat send: persist the message, broadcast it
// on the room topic, then write and deliver a notification for every room
// member except the sender. It is also the shared path for durable
// notifications raised elsewhere (joins, removals).
type Coordinator struct {
	log   *log.Logger
	db    database.RoomChatRepository
	hub   *hub.Hub
	stats stats.StatsProvider
}

func NewCoordinator(logger *log.Logger, db database.RoomChatRepository, h *hub.Hub, sp stats.StatsProvider) *Coordinator {
	return &Coordinator{
		log:   logger,
		db:    db,
		hub:   h,
		stats: sp,
	}
}

// SendToRoom handles one inbound chat frame. A failure before or during
// persistence is fatal to the whole send; per-recipient notification
// failures are logged and skipped so one bad recipient never blocks the
// rest. The room broadcast happens before any notification work.
func (co *Coordinator) SendToRoom(roomId, senderId int, content string) error {
	room, err := co.db.GetRoomById(roomId)
	if err != nil {
		return fmt.Errorf("resolve room %d: %w", roomId, err)
	}

	sender, err := co.db.GetAccountById(senderId)
	if err != nil {
		return fmt.Errorf("resolve sender %d: %w", senderId, err)
	}

	saved, err := co.db.CreateMessage(database.Message{
		RoomId:   room.Id,
		SenderId: sender.Id,
		Content:  content,
	})
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	// the broadcast carries the timestamp the store assigned
	view := types.ChatMessage{
		Id:         saved.Id,
		RoomId:     saved.RoomId,
		SenderId:   saved.SenderId,
		SenderName: sender.Username,
		Content:    saved.Content,
		SentAt:     saved.SentAt,
	}
	co.hub.Publish(hub.RoomTopic(room.Id), &ServerFrame{
		BaseFrame: BaseFrame{Timestamp: saved.SentAt},
		Message:   &view,
	})

	members, err := co.db.ListRoomMembers(room.Id)
	if err != nil {
		return fmt.Errorf("list members of room %d: %w", room.Id, err)
	}

	for _, member := range members {
		if member.Id == sender.Id {
			// never notify the sender about their own message
			continue
		}

		recipient := types.User{Id: member.Id, Username: member.Username}
		content := sender.Username + ": " + saved.Content
		if err := co.Notify(recipient, types.NotificationMessage, messageNotificationTitle, content); err != nil {
			co.log.Printf("notify %q for room %d: %v", member.Username, room.Id, err)
		}
	}

	return nil
}

// Notify writes a durable notification for the recipient and delivers it
// on their user queue. The queue delivery is best-effort; durability comes
// from the store.
func (co *Coordinator) Notify(recipient types.User, typ types.NotificationType, title, content string) error {
	saved, err := co.db.CreateNotification(database.CreateNotificationParams{
		UserId:  recipient.Id,
		Type:    string(typ),
		Title:   title,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	co.stats.Incr(stats.NotificationsWritten)

	view := notificationView(saved)
	co.hub.Publish(hub.UserQueue(recipient.Username), &ServerFrame{
		BaseFrame:    BaseFrame{Timestamp: saved.SentAt},
		Notification: &view,
	})

	return nil
}

// Authorize decides whether the user may subscribe to a destination. User
// queues belong to the session user alone; PRIVATE room topics require
// ownership or membership, PUBLIC topics are open.
func (co *Coordinator) Authorize(user types.User, destination string) error {
	if roomId, ok := hub.ParseRoomTopic(destination); ok {
		room, err := co.db.GetRoomById(roomId)
		if err != nil {
			return err
		}

		if types.Visibility(room.Visibility) == types.VisibilityPublic || room.OwnerId == user.Id {
			return nil
		}

		members, err := co.db.ListRoomMembers(room.Id)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.Id == user.Id {
				return nil
			}
		}

		return ErrForbidden
	}

	if name, ok := hub.ParseUserQueue(destination); ok {
		if name != user.Username {
			return ErrForbidden
		}
		return nil
	}

	return database.ErrNotFound
}

func notificationView(n database.Notification) types.Notification {
	return types.Notification{
		Id:      n.Id,
		UserId:  n.UserId,
		Type:    types.NotificationType(n.Type),
		Title:   n.Title,
		Content: n.Content,
		SentAt:  n.SentAt,
		Read:    n.IsRead,
		ReadAt:  n.ReadAt,
	}
}
