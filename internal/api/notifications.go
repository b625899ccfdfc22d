package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/types"
)

func notificationViews(items []database.Notification) []types.Notification {
	views := make([]types.Notification, 0, len(items))
	for _, n := range items {
		views = append(views, types.Notification{
			Id:      n.Id,
			UserId:  n.UserId,
			Type:    types.NotificationType(n.Type),
			Title:   n.Title,
			Content: n.Content,
			SentAt:  n.SentAt,
			Read:    n.IsRead,
			ReadAt:  n.ReadAt,
		})
	}

	return views
}

// inboxUser authorizes access to the inbox named by the userId path
// value. Inboxes are private to their owner; admins may read any.
func (s *RoomChatApp) inboxUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return 0, false
	}

	userId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return 0, false
	}

	if userId != user.Id && user.Role != types.RoleAdmin {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return 0, false
	}

	return userId, true
}

func (s *RoomChatApp) listNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.inboxUser(w, r)
	if !ok {
		return
	}

	items, err := s.db.ListNotifications(userId)
	if err != nil {
		s.log.Println("list notifications:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, notificationViews(items))
}

func (s *RoomChatApp) listUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.inboxUser(w, r)
	if !ok {
		return
	}

	items, err := s.db.ListUnreadNotifications(userId)
	if err != nil {
		s.log.Println("list unread notifications:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, notificationViews(items))
}

func (s *RoomChatApp) countUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.inboxUser(w, r)
	if !ok {
		return
	}

	count, err := s.db.CountUnreadNotifications(userId)
	if err != nil {
		s.log.Println("count unread notifications:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]int{"count": count})
}

func (s *RoomChatApp) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.inboxUser(w, r)
	if !ok {
		return
	}

	notificationId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.MarkNotificationRead(notificationId, userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	views := notificationViews([]database.Notification{updated})
	s.writeJson(w, http.StatusOK, views[0])
}

func (s *RoomChatApp) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.inboxUser(w, r)
	if !ok {
		return
	}

	if err := s.db.MarkAllNotificationsRead(userId); err != nil {
		s.log.Println("mark all notifications read:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *RoomChatApp) deleteNotification(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.inboxUser(w, r)
	if !ok {
		return
	}

	notificationId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteNotification(notificationId, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}
