package server

import (
	"net/http"
	"time"

	"github.com/stoicapp/roomchat/internal/types"
)

type BaseFrame struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientFrame struct {
	BaseFrame
	Subscribe   *Subscribe   `json:"subscribe,omitempty"`
	Unsubscribe *Unsubscribe `json:"unsubscribe,omitempty"`
	Send        *SendChat    `json:"send,omitempty"`
	UserId      int          `json:"-"`
	client      *Client      `json:"-"`
}

type Subscribe struct {
	Destination string `json:"destination"`
}

type Unsubscribe struct {
	Destination string `json:"destination"`
}

type SendChat struct {
	RoomId   int    `json:"room_id"`
	SenderId int    `json:"sender_id,omitempty"`
	Content  string `json:"content"`
}

type ServerFrame struct {
	BaseFrame
	Response     *Response           `json:"response,omitempty"`
	Message      *types.ChatMessage  `json:"message,omitempty"`
	Notification *types.Notification `json:"notification,omitempty"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

func NoErrOK(id int, data map[string]any) *ServerFrame {
	return &ServerFrame{
		BaseFrame: BaseFrame{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func NoErrAccepted(id int) *ServerFrame {
	return &ServerFrame{
		BaseFrame: BaseFrame{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
		},
	}
}

func ErrNotFound(id int) *ServerFrame {
	return &ServerFrame{
		BaseFrame: BaseFrame{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "not found",
		},
	}
}

func ErrForbiddenFrame(id int) *ServerFrame {
	return &ServerFrame{
		BaseFrame: BaseFrame{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "forbidden",
		},
	}
}

func ErrInternalError(id int) *ServerFrame {
	return &ServerFrame{
		BaseFrame: BaseFrame{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerFrame {
	msg := &ServerFrame{
		BaseFrame: BaseFrame{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
