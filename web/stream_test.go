package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ETTyler/football/controller/mockcontroller"
	"github.com/ETTyler/football/model"
	"github.com/ETTyler/football/notify"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
)

type rawStreamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialStream(t *testing.T, s *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/notifications/ws"
	return websocket.DefaultDialer.Dial(url, header)
}

func readStreamMessage(t *testing.T, conn *websocket.Conn) rawStreamMessage {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg rawStreamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("error reading stream message: %v", err)
	}
	return msg
}

func TestNotificationStream(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	hub := notify.NewHub(notify.DefaultBuffer)
	ctrl.On("SubscribeNotifications", testUser.ID).Return(hub.Subscribe(testUser.ID))
	ctrl.On("UnreadNotificationCount", mock.Anything, testUser.ID).Return(3)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+testToken)
	conn, _, err := dialStream(t, s, header)
	if err != nil {
		t.Fatalf("error dialing stream: %v", err)
	}

	first := readStreamMessage(t, conn)
	if first.Type != MessageUnreadCount {
		t.Fatalf("expected the unread count first, got: %s", first.Type)
	}
	var count countResponse
	if err := json.Unmarshal(first.Data, &count); err != nil || count.Count != 3 {
		t.Errorf("expected an unread count of 3, got: %s", string(first.Data))
	}

	delivered := hub.Publish(model.Notification{
		ID:      "n1",
		UserID:  testUser.ID,
		Type:    model.NOTIFY_MATCH_UPDATE,
		Title:   "Match Updated",
		Message: "Sunday League has been updated",
	})
	if delivered != 1 {
		t.Fatalf("expected the notification to reach one subscriber, got %d", delivered)
	}

	next := readStreamMessage(t, conn)
	if next.Type != MessageNotification {
		t.Fatalf("expected a notification, got: %s", next.Type)
	}
	var n model.Notification
	if err := json.Unmarshal(next.Data, &n); err != nil {
		t.Fatalf("error decoding notification: %v", err)
	}
	if n.ID != "n1" || n.Title != "Match Updated" {
		t.Errorf("unexpected notification: %+v", n)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(testUser.ID) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the subscription to be closed when the client went away")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNotificationStream_requiresSession(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	_, resp, err := dialStream(t, s, nil)
	if err == nil {
		t.Fatalf("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got: %+v", resp)
	}
	ctrl.AssertNotCalled(t, "SubscribeNotifications", mock.Anything)
}

func TestCheckOrigin(t *testing.T) {
	upgrader := newUpgrader([]string{"http://localhost:3000"})

	tests := map[string]struct {
		origin   string
		host     string
		expected bool
	}{
		"no origin":  {origin: "", host: "api.example.com", expected: true},
		"allowed":    {origin: "http://localhost:3000", host: "api.example.com", expected: true},
		"same host":  {origin: "https://api.example.com", host: "api.example.com", expected: true},
		"other site": {origin: "https://evil.example.com", host: "api.example.com", expected: false},
		"other port": {origin: "http://localhost:4000", host: "localhost:3000", expected: false},
		"not a url":  {origin: "::", host: "api.example.com", expected: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/notifications/ws", nil)
			r.Host = tc.host
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			if got := upgrader.CheckOrigin(r); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
