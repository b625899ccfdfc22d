package database

import "time"

type RoomChatRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	GetAccountByUsername(username string) (User, error)
	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomById(roomId int) (Room, error)
	GetRoomByJoinCode(joinCode string) (Room, error)
	ListVisibleRooms(userId int) ([]Room, error)
	ListRoomMembers(roomId int) ([]User, error)
	JoinRoomByCode(userId int, joinCode string) (JoinResult, Room, []User, error)
	RemoveRoomMember(roomId, userId int) error
	DeleteRoom(roomId int) error
	CreateMessage(msg Message) (Message, error)
	GetRoomMessages(roomId int) ([]Message, error)
	GetMessagesBySender(senderId int) ([]Message, error)
	GetMessagesBetween(start, end time.Time) ([]Message, error)
	CreateNotification(params CreateNotificationParams) (Notification, error)
	ListNotifications(userId int) ([]Notification, error)
	ListUnreadNotifications(userId int) ([]Notification, error)
	CountUnreadNotifications(userId int) (int, error)
	MarkNotificationRead(notificationId, userId int) (Notification, error)
	MarkAllNotificationsRead(userId int) error
	DeleteNotification(notificationId, userId int) error
}
