package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListNotifications(t *testing.T) {
	bob := database.User{Id: 2, Username: "bob", Role: "REGULAR"}

	t.Run("lists own inbox newest first", func(t *testing.T) {
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, bob)
		mockRepo.On("ListNotifications", 2).Return([]database.Notification{
			{Id: 5, UserId: 2, Type: "MESSAGE", Title: "New Message", Content: "alice: hi"},
			{Id: 3, UserId: 2, Type: "USER_JOINED", Title: "Room Joined"},
		}, nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodGet, "/api/notifications/2", nil, 2)
		req.SetPathValue("userId", "2")
		app.listNotifications(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected 200")

		var items []types.Notification
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&items), "expected notifications to decode")
		require.Len(t, items, 2, "expected both notifications")
		assert.Equal(t, 5, items[0].Id, "expected store order to be preserved")
	})

	t.Run("cannot read another user's inbox", func(t *testing.T) {
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, bob)

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodGet, "/api/notifications/1", nil, 2)
		req.SetPathValue("userId", "1")
		app.listNotifications(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code, "expected 403 for a foreign inbox")
		mockRepo.AssertNotCalled(t, "ListNotifications", mock.Anything)
	})

	t.Run("admin may read any inbox", func(t *testing.T) {
		admin := database.User{Id: 9, Username: "admin", Role: "ADMIN"}
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, admin)
		mockRepo.On("ListNotifications", 2).Return([]database.Notification{}, nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodGet, "/api/notifications/2", nil, 9)
		req.SetPathValue("userId", "2")
		app.listNotifications(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected 200 for admin")
	})
}

func TestListUnreadNotifications(t *testing.T) {
	bob := database.User{Id: 2, Username: "bob", Role: "REGULAR"}
	mockRepo := &database.MockRoomChatRepository{}
	defer mockRepo.AssertExpectations(t)
	mockSessionUser(mockRepo, bob)
	mockRepo.On("ListUnreadNotifications", 2).Return([]database.Notification{
		{Id: 5, UserId: 2, Type: "MESSAGE", IsRead: false},
	}, nil).Once()

	app, _ := newTestApp(t, mockRepo)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/notifications/2/unread", nil, 2)
	req.SetPathValue("userId", "2")
	app.listUnreadNotifications(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "expected 200")

	var items []types.Notification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&items), "expected notifications to decode")
	require.Len(t, items, 1, "expected one unread notification")
	assert.False(t, items[0].Read, "expected notification to be unread")
}

func TestCountUnreadNotifications(t *testing.T) {
	bob := database.User{Id: 2, Username: "bob", Role: "REGULAR"}
	mockRepo := &database.MockRoomChatRepository{}
	defer mockRepo.AssertExpectations(t)
	mockSessionUser(mockRepo, bob)
	mockRepo.On("CountUnreadNotifications", 2).Return(3, nil).Once()

	app, _ := newTestApp(t, mockRepo)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/notifications/2/count", nil, 2)
	req.SetPathValue("userId", "2")
	app.countUnreadNotifications(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "expected 200")

	var body map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body), "expected count to decode")
	assert.Equal(t, 3, body["count"], "expected count to match")
}

func TestMarkNotificationRead(t *testing.T) {
	bob := database.User{Id: 2, Username: "bob", Role: "REGULAR"}

	t.Run("marks unread as read", func(t *testing.T) {
		readAt := time.Now().UTC().Round(time.Millisecond)
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, bob)
		mockRepo.On("MarkNotificationRead", 5, 2).Return(database.Notification{
			Id: 5, UserId: 2, Type: "MESSAGE", IsRead: true, ReadAt: &readAt,
		}, nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodPut, "/api/notifications/5/read/2", nil, 2)
		req.SetPathValue("id", "5")
		req.SetPathValue("userId", "2")
		app.markNotificationRead(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected 200")

		var item types.Notification
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&item), "expected notification to decode")
		assert.True(t, item.Read, "expected notification to be read")
		require.NotNil(t, item.ReadAt, "expected read timestamp to be set")
		assert.Equal(t, readAt, *item.ReadAt, "expected read timestamp to match")
	})

	t.Run("unknown notification", func(t *testing.T) {
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, bob)
		mockRepo.On("MarkNotificationRead", 99, 2).Return(database.Notification{}, database.ErrNotFound).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodPut, "/api/notifications/99/read/2", nil, 2)
		req.SetPathValue("id", "99")
		req.SetPathValue("userId", "2")
		app.markNotificationRead(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code, "expected 404")
	})
}

func TestMarkAllNotificationsRead(t *testing.T) {
	bob := database.User{Id: 2, Username: "bob", Role: "REGULAR"}
	mockRepo := &database.MockRoomChatRepository{}
	defer mockRepo.AssertExpectations(t)
	mockSessionUser(mockRepo, bob)
	mockRepo.On("MarkAllNotificationsRead", 2).Return(nil).Once()

	app, _ := newTestApp(t, mockRepo)
	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/api/notifications/2/read-all", nil, 2)
	req.SetPathValue("userId", "2")
	app.markAllNotificationsRead(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "expected 200")
}

func TestDeleteNotification(t *testing.T) {
	bob := database.User{Id: 2, Username: "bob", Role: "REGULAR"}

	t.Run("deletes own notification", func(t *testing.T) {
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, bob)
		mockRepo.On("DeleteNotification", 5, 2).Return(nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodDelete, "/api/notifications/5/2", nil, 2)
		req.SetPathValue("id", "5")
		req.SetPathValue("userId", "2")
		app.deleteNotification(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code, "expected 204")
	})

	t.Run("unknown notification", func(t *testing.T) {
		mockRepo := &database.MockRoomChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockSessionUser(mockRepo, bob)
		mockRepo.On("DeleteNotification", 99, 2).Return(database.ErrNotFound).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(http.MethodDelete, "/api/notifications/99/2", nil, 2)
		req.SetPathValue("id", "99")
		req.SetPathValue("userId", "2")
		app.deleteNotification(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code, "expected 404")
	})
}
