package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRoomChatRepository struct {
	mock.Mock
}

func (m *MockRoomChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRoomChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRoomChatRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRoomChatRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRoomChatRepository) GetAccountByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRoomChatRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomChatRepository) GetRoomById(roomId int) (Room, error) {
	args := m.Called(roomId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomChatRepository) GetRoomByJoinCode(joinCode string) (Room, error) {
	args := m.Called(joinCode)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomChatRepository) ListVisibleRooms(userId int) ([]Room, error) {
	args := m.Called(userId)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRoomChatRepository) ListRoomMembers(roomId int) ([]User, error) {
	args := m.Called(roomId)
	if users, ok := args.Get(0).([]User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRoomChatRepository) JoinRoomByCode(userId int, joinCode string) (JoinResult, Room, []User, error) {
	args := m.Called(userId, joinCode)
	return args.Get(0).(JoinResult), args.Get(1).(Room), args.Get(2).([]User), args.Error(3)
}
func (m *MockRoomChatRepository) RemoveRoomMember(roomId, userId int) error {
	args := m.Called(roomId, userId)
	return args.Error(0)
}
func (m *MockRoomChatRepository) DeleteRoom(roomId int) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockRoomChatRepository) CreateMessage(msg Message) (Message, error) {
	args := m.Called(msg)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRoomChatRepository) GetRoomMessages(roomId int) ([]Message, error) {
	args := m.Called(roomId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRoomChatRepository) GetMessagesBySender(senderId int) ([]Message, error) {
	args := m.Called(senderId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRoomChatRepository) GetMessagesBetween(start, end time.Time) ([]Message, error) {
	args := m.Called(start, end)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRoomChatRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	args := m.Called(params)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockRoomChatRepository) ListNotifications(userId int) ([]Notification, error) {
	args := m.Called(userId)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockRoomChatRepository) ListUnreadNotifications(userId int) ([]Notification, error) {
	args := m.Called(userId)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockRoomChatRepository) CountUnreadNotifications(userId int) (int, error) {
	args := m.Called(userId)
	return args.Int(0), args.Error(1)
}
func (m *MockRoomChatRepository) MarkNotificationRead(notificationId, userId int) (Notification, error) {
	args := m.Called(notificationId, userId)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockRoomChatRepository) MarkAllNotificationsRead(userId int) error {
	args := m.Called(userId)
	return args.Error(0)
}
func (m *MockRoomChatRepository) DeleteNotification(notificationId, userId int) error {
	args := m.Called(notificationId, userId)
	return args.Error(0)
}
