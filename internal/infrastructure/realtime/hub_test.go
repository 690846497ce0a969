package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingGauge struct{ n atomic.Int64 }

func (g *countingGauge) Inc() { g.n.Add(1) }
func (g *countingGauge) Dec() { g.n.Add(-1) }

func newTestHub(t *testing.T, origins ...string) (*Hub, *httptest.Server, *countingGauge) {
	t.Helper()
	hub := NewHub(origins, zap.NewNop())
	gauge := &countingGauge{}
	hub.SetGauge(gauge)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, r.URL.Query().Get("user"))
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv, gauge
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return conn
}

func newNotification(t *testing.T, userID uuid.UUID) *notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(userID, notification.TypeOrder, "Order shipped", "SF-20261019-00001 is on its way", "/orders/1")
	require.NoError(t, err)
	return n
}

func TestHub_PushReachesEveryConnectionOfUser(t *testing.T) {
	hub, srv, gauge := newTestHub(t)
	userID := uuid.New()

	a := dial(t, srv, userID.String())
	defer a.Close()
	b := dial(t, srv, userID.String())
	defer b.Close()
	other := dial(t, srv, uuid.NewString())
	defer other.Close()

	require.Eventually(t, func() bool { return hub.ConnectionCount(userID.String()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(3), gauge.n.Load())

	hub.Push(userID.String(), newNotification(t, userID))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type string `json:"type"`
			Data struct {
				Title  string `json:"title"`
				IsRead bool   `json:"is_read"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "notification", msg.Type)
		assert.Equal(t, "Order shipped", msg.Data.Title)
		assert.False(t, msg.Data.IsRead)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other users receive nothing")
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, srv, gauge := newTestHub(t)

	conn := dial(t, srv, "u1")
	require.Eventually(t, func() bool { return hub.ConnectionCount("u1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectionCount("u1") == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), gauge.n.Load())

	hub.Push("u1", newNotification(t, uuid.New()))
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, srv, _ := newTestHub(t)

	conn := dial(t, srv, "u1")
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount("u1") == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.ConnectionCount("u1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=u2"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://seafresh.test/"})

	req := httptest.NewRequest("GET", "http://api.seafresh.test/ws", nil)
	assert.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "https://seafresh.test")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.test")
	assert.False(t, check(req))

	req.Header.Set("Origin", "http://api.seafresh.test")
	assert.True(t, check(req), "same host")
}
