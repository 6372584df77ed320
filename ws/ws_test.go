package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microblog/internal/events"
	"microblog/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	u := &models.User{Login: "alice"}
	u.ID = "user-1"
	return u, nil
}

func startFeed(t *testing.T, origins []string) (*FeedManager, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	manager := NewFeedManager()
	go manager.Run(ctx)

	router := gin.New()
	NewWebSocketHandler(manager, fakeAuth{}, origins).RegisterRoutes(&router.RouterGroup)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return manager, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFeed_BroadcastsEvents(t *testing.T) {
	manager, srv := startFeed(t, []string{"*"})

	anon := dial(t, srv, "")
	authed := dial(t, srv, "?token=good")
	require.Eventually(t, func() bool { return manager.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	manager.Publish(events.New(events.PostCreated, "post-1", "user-1", map[string]string{"title": "T"}))

	for _, conn := range []*websocket.Conn{anon, authed} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got events.Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, events.PostCreated, got.Type)
		assert.Equal(t, "post-1", got.PostID)
		assert.Equal(t, "user-1", got.UserID)
	}
}

func TestFeed_ResolvesUser(t *testing.T) {
	manager, srv := startFeed(t, []string{"*"})
	dial(t, srv, "?token=good")
	dial(t, srv, "?token=bad")
	require.Eventually(t, func() bool { return manager.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	manager.mu.RLock()
	users := map[string]bool{}
	for c := range manager.clients {
		users[c.UserID] = true
	}
	manager.mu.RUnlock()

	assert.True(t, users["user-1"])
	assert.True(t, users[""])
}

func TestFeed_ResolvesUserFromHeader(t *testing.T) {
	manager, srv := startFeed(t, []string{"*"})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": []string{"Bearer good"}})
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return manager.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	for c := range manager.clients {
		assert.Equal(t, "user-1", c.UserID)
	}
}

func TestFeed_UnregistersOnClose(t *testing.T) {
	manager, srv := startFeed(t, []string{"*"})
	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return manager.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return manager.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeed_RejectsForeignOrigin(t *testing.T) {
	_, srv := startFeed(t, []string{"https://app.example.com"})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed"
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFeedManager_DropsSlowClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := NewFeedManager()
	go manager.Run(ctx)

	// No write pump drains this client, so its buffer fills up.
	slow := &Client{ID: "slow", send: make(chan []byte, 1), manager: manager}
	require.True(t, manager.join(slow))

	for i := 0; i < 3; i++ {
		manager.Publish(events.New(events.PostRated, "p", "u", nil))
	}

	assert.Eventually(t, func() bool { return manager.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeedManager_PublishAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	manager := NewFeedManager()
	stopped := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			manager.Publish(events.New(events.PostDeleted, "p", "u", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked after the manager stopped")
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://a.example.com/"})

	req := httptest.NewRequest(http.MethodGet, "/ws/feed", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://a.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://b.example.com")
	assert.False(t, check(req))
}
