package types

import (
	"time"
)

type Role string

const (
	RoleRegular Role = "REGULAR"
	RoleAdmin   Role = "ADMIN"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

type NotificationType string

const (
	NotificationUserJoined   NotificationType = "USER_JOINED"
	NotificationPostCreated  NotificationType = "POST_CREATED"
	NotificationCommentAdded NotificationType = "COMMENT_ADDED"
	NotificationSystemUpdate NotificationType = "SYSTEM_UPDATE"
	NotificationReminder     NotificationType = "REMINDER"
	NotificationPostLiked    NotificationType = "POST_LIKED"
	NotificationCommentLiked NotificationType = "COMMENT_LIKED"
	NotificationUserRemoved  NotificationType = "USER_REMOVED"
	NotificationUserLeft     NotificationType = "USER_LEFT"
	NotificationMessage      NotificationType = "MESSAGE"
)

type User struct {
	Id        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role,omitempty"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Room struct {
	Id         int        `json:"id"`
	Name       string     `json:"name"`
	OwnerId    int        `json:"owner_id"`
	Visibility Visibility `json:"visibility"`
	JoinCode   string     `json:"join_code,omitempty"`
	Members    []User     `json:"members,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}

type ChatMessage struct {
	Id         int       `json:"id"`
	RoomId     int       `json:"room_id"`
	SenderId   int       `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

type Notification struct {
	Id      int              `json:"id"`
	UserId  int              `json:"user_id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Content string           `json:"content"`
	SentAt  time.Time        `json:"sent_at"`
	Read    bool             `json:"read"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
}
