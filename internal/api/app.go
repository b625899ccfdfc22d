package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/stoicapp/roomchat/internal/config"
	"github.com/stoicapp/roomchat/internal/database"
	"github.com/stoicapp/roomchat/internal/hub"
	"github.com/stoicapp/roomchat/internal/server"
	"github.com/stoicapp/roomchat/internal/stats"
	"github.com/teris-io/shortid"
)

type RoomChatApp struct {
	log            *log.Logger
	db             database.RoomChatRepository
	mux            *http.Server
	coordinator    *server.Coordinator
	hub            *hub.Hub
	stats          stats.StatsProvider
	sid            *shortid.Shortid
	signingKey     []byte
	allowedOrigins []string
}

func NewRoomChatApp(mux *http.ServeMux, logger *log.Logger, co *server.Coordinator, h *hub.Hub, db database.RoomChatRepository, sp stats.StatsProvider, cfg *config.Config) (*RoomChatApp, error) {
	sid, err := shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		return nil, fmt.Errorf("shortid: %w", err)
	}

	s := &RoomChatApp{
		log:            logger,
		db:             db,
		coordinator:    co,
		hub:            h,
		stats:          sp,
		sid:            sid,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))

	mux.HandleFunc("POST /rooms", s.authMiddleware(s.createPublicRoom))
	mux.HandleFunc("POST /rooms/createPR", s.authMiddleware(s.createPrivateRoom))
	mux.HandleFunc("POST /rooms/joinPR", s.authMiddleware(s.joinRoom))
	mux.HandleFunc("GET /rooms/visible", s.authMiddleware(s.visibleRooms))
	mux.HandleFunc("GET /rooms/users", s.authMiddleware(s.roomMembers))
	mux.HandleFunc("GET /rooms/{id}", s.authMiddleware(s.getRoom))
	mux.HandleFunc("DELETE /rooms/{id}", s.authMiddleware(s.deleteRoom))
	mux.HandleFunc("DELETE /rooms/{roomId}/remove-user/{userName}", s.authMiddleware(s.removeRoomMember))

	mux.HandleFunc("GET /api/messages/rooms/{roomId}/history", s.authMiddleware(s.roomHistory))
	mux.HandleFunc("GET /api/messages/senders/{senderId}", s.authMiddleware(s.senderHistory))
	mux.HandleFunc("GET /api/messages/range", s.authMiddleware(s.messagesInRange))

	mux.HandleFunc("GET /api/notifications/{userId}", s.authMiddleware(s.listNotifications))
	mux.HandleFunc("GET /api/notifications/{userId}/unread", s.authMiddleware(s.listUnreadNotifications))
	mux.HandleFunc("GET /api/notifications/{userId}/count", s.authMiddleware(s.countUnreadNotifications))
	mux.HandleFunc("PUT /api/notifications/{id}/read/{userId}", s.authMiddleware(s.markNotificationRead))
	mux.HandleFunc("PUT /api/notifications/{userId}/read-all", s.authMiddleware(s.markAllNotificationsRead))
	mux.HandleFunc("DELETE /api/notifications/{id}/{userId}", s.authMiddleware(s.deleteNotification))

	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))
	mux.HandleFunc("GET /healthz", s.healthz)

	handler := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	handler = s.requestIdMiddleware(handler)
	handler = s.errorHandler(handler)

	s.mux = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: handler,
	}

	return s, nil
}

func (s *RoomChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *RoomChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
