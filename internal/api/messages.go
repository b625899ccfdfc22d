package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/types"
)

func messageViews(msgs []database.Message) []types.ChatMessage {
	views := make([]types.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, types.ChatMessage{
			Id:       msg.Id,
			RoomId:   msg.RoomId,
			SenderId: msg.SenderId,
			Content:  msg.Content,
			SentAt:   msg.SentAt,
		})
	}

	return views
}

func (s *RoomChatApp) roomHistory(w http.ResponseWriter, r *http.Request) {
	roomId, err := strconv.Atoi(r.PathValue("roomId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetRoomById(roomId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetRoomMessages(roomId)
	if err != nil {
		s.log.Println("room history:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, messageViews(messages))
}

func (s *RoomChatApp) senderHistory(w http.ResponseWriter, r *http.Request) {
	senderId, err := strconv.Atoi(r.PathValue("senderId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetMessagesBySender(senderId)
	if err != nil {
		s.log.Println("sender history:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, messageViews(messages))
}

func (s *RoomChatApp) messagesInRange(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if end.Before(start) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetMessagesBetween(start, end)
	if err != nil {
		s.log.Println("messages in range:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, messageViews(messages))
}
