package database

import "time"

type User struct {
	Id           int
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Room struct {
	Id         int
	Name       string
	OwnerId    int
	Visibility string
	JoinCode   string
	CreatedAt  time.Time
}

type RoomMember struct {
	RoomId    int
	UserId    int
	Username  string
	CreatedAt time.Time
}

type Message struct {
	Id       int
	RoomId   int
	SenderId int
	Content  string
	SentAt   time.Time
}

type Notification struct {
	Id      int
	UserId  int
	Type    string
	Title   string
	Content string
	SentAt  time.Time
	IsRead  bool
	ReadAt  *time.Time
}

type CreateAccountParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

type CreateRoomParams struct {
	Name       string
	OwnerId    int
	Visibility string
	// AdmitOwner adds the owner to the member set in the same
	// transaction. Private rooms admit their creator.
	AdmitOwner bool
}

type CreateNotificationParams struct {
	UserId  int
	Type    string
	Title   string
	Content string
}

// JoinResult is the outcome of a join-by-code attempt.
type JoinResult int

const (
	Joined JoinResult = iota + 1
	AlreadyMember
	NoSuchCode
)
