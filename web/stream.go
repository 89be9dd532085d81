package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/ETTyler/football/controller"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

const (
	MessageUnreadCount  = "unread_count"
	MessageNotification = "notification"
)

// StreamMessage is a frame sent on the notification stream.
type StreamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// newUpgrader accepts same-origin requests, requests without an Origin, and
// the listed origins.
func newUpgrader(allowed []string) *websocket.Upgrader {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		origins[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origins[origin] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// notificationStreamHandler pushes the user's new notifications over a
// websocket until either side goes away. The first frame is the unread count.
func notificationStreamHandler(ctrl controller.C, upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r).ID

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			log.Warn().Err(err).Str("user", userID).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		sub := ctrl.SubscribeNotifications(userID)
		defer sub.Close()
		log.Info().Str("user", userID).Msg("notification stream opened")
		defer log.Info().Str("user", userID).Msg("notification stream closed")

		// The client never sends anything we use, but reading is how close
		// frames and pongs get processed.
		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadLimit(512)
			conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		write := func(msg StreamMessage) error {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			return conn.WriteJSON(msg)
		}

		unread := ctrl.UnreadNotificationCount(r.Context(), userID)
		if err := write(StreamMessage{Type: MessageUnreadCount, Data: countResponse{Count: unread}}); err != nil {
			return
		}

		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()

		for {
			select {
			case <-done:
				return
			case n, ok := <-sub.C:
				if !ok {
					return
				}
				if err := write(StreamMessage{Type: MessageNotification, Data: n}); err != nil {
					log.Warn().Err(err).Str("user", userID).Msg("error writing notification")
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
