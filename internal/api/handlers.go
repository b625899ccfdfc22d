package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/server"
	"github.com/stoicapp/roomchat/internal/types"
)

type CreateRoomRequest struct {
	Name string `json:"name"`
}

func (s *RoomChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func roomView(r database.Room, includeJoinCode bool) types.Room {
	room := types.Room{
		Id:         r.Id,
		Name:       r.Name,
		OwnerId:    r.OwnerId,
		Visibility: types.Visibility(r.Visibility),
		CreatedAt:  r.CreatedAt,
	}
	if includeJoinCode {
		room.JoinCode = r.JoinCode
	}

	return room
}

func (s *RoomChatApp) createPublicRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if user.Role != types.RoleAdmin {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.createRoom(w, r, user, types.VisibilityPublic)
}

func (s *RoomChatApp) createPrivateRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.createRoom(w, r, user, types.VisibilityPrivate)
}

func (s *RoomChatApp) createRoom(w http.ResponseWriter, r *http.Request, user types.User, visibility types.Visibility) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newRoom, err := s.db.CreateRoom(database.CreateRoomParams{
		Name:       req.Name,
		OwnerId:    user.Id,
		Visibility: string(visibility),
		// private rooms admit their creator
		AdmitOwner: visibility == types.VisibilityPrivate,
	})
	if err != nil {
		s.log.Println("create room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, roomView(newRoom, true))
}

func (s *RoomChatApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	joinCode := r.URL.Query().Get("joinCode")
	if joinCode == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	result, room, members, err := s.db.JoinRoomByCode(user.Id, joinCode)
	if err != nil {
		s.log.Println("join room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	switch result {
	case database.NoSuchCode:
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
	case database.AlreadyMember:
		errResp := NewConflictError()
		s.writeJson(w, errResp.StatusCode, errResp)
	case database.Joined:
		s.dispatchJoinNotifications(user, room, members)
		s.writeJson(w, http.StatusOK, roomView(room, false))
	default:
		errResp := NewInternalServerError(errors.New("unexpected join result"))
		s.writeJson(w, errResp.StatusCode, errResp)
	}
}

// dispatchJoinNotifications notifies the joiner and every member present
// before the join. Failures are logged, never surfaced to the joiner.
func (s *RoomChatApp) dispatchJoinNotifications(joiner types.User, room database.Room, members []database.User) {
	err := s.coordinator.Notify(joiner, types.NotificationUserJoined,
		"Room Joined", "You have successfully joined the room: "+room.Name)
	if err != nil {
		s.log.Printf("notify joiner %q: %v", joiner.Username, err)
	}

	for _, member := range members {
		if member.Id == joiner.Id {
			continue
		}

		recipient := types.User{Id: member.Id, Username: member.Username}
		err := s.coordinator.Notify(recipient, types.NotificationUserJoined,
			"New User Joined", joiner.Username+" has joined the room: "+room.Name)
		if err != nil {
			s.log.Printf("notify member %q of join: %v", member.Username, err)
		}
	}
}

func (s *RoomChatApp) getRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomById(roomId)
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

	// only the owner and admins see the invite code
	includeJoinCode := room.OwnerId == user.Id || user.Role == types.RoleAdmin
	s.writeJson(w, http.StatusOK, roomView(room, includeJoinCode))
}

func (s *RoomChatApp) visibleRooms(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbRooms, err := s.db.ListVisibleRooms(user.Id)
	if err != nil {
		s.log.Println("list visible rooms:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms := make([]types.Room, 0, len(dbRooms))
	for _, room := range dbRooms {
		rooms = append(rooms, roomView(room, room.OwnerId == user.Id))
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func (s *RoomChatApp) roomMembers(w http.ResponseWriter, r *http.Request) {
	roomId, err := strconv.Atoi(r.URL.Query().Get("roomId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	members, err := s.db.ListRoomMembers(roomId)
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

	users := make([]types.User, 0, len(members))
	for _, member := range members {
		users = append(users, types.User{
			Id:        member.Id,
			Username:  member.Username,
			CreatedAt: member.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, users)
}

func (s *RoomChatApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomById(roomId)
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

	if room.OwnerId != user.Id && user.Role != types.RoleAdmin {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteRoom(room.Id); err != nil {
		s.log.Println("delete room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *RoomChatApp) removeRoomMember(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := strconv.Atoi(r.PathValue("roomId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomById(roomId)
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

	if room.OwnerId != user.Id {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userName := r.PathValue("userName")
	if userName == user.Username {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	target, err := s.db.GetAccountByUsername(userName)
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

	if target.Id == room.OwnerId {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.RemoveRoomMember(room.Id, target.Id); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	removed := types.User{Id: target.Id, Username: target.Username}
	err = s.coordinator.Notify(removed, types.NotificationUserRemoved,
		"Removed from Room", "You have been removed from the room: "+room.Name)
	if err != nil {
		s.log.Printf("notify removed user %q: %v", target.Username, err)
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *RoomChatApp) healthz(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *RoomChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.sessionUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(user, conn, s.coordinator, s.hub, s.log, s.stats)
	client.Run()
}
