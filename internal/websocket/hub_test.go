package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stayhub/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversOnlyToTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	tenantA, tenantB := uuid.New(), uuid.New()
	parse := func(token string) (*session.Session, error) {
		switch token {
		case "a":
			return &session.Session{TenantID: tenantA, UserID: uuid.New()}, nil
		case "b":
			return &session.Session{TenantID: tenantB, UserID: uuid.New()}, nil
		}
		return nil, errors.New("bad token")
	}

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, parse) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="
	connA, _, err := websocket.DefaultDialer.Dial(wsURL+"a", nil)
	require.NoError(t, err)
	defer connA.Close()
	connB, _, err := websocket.DefaultDialer.Dial(wsURL+"b", nil)
	require.NoError(t, err)
	defer connB.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount(tenantA) == 1 && hub.ClientCount(tenantB) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToTenant(tenantA, []byte(`{"type":"reservation.created"}`))

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := connA.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reservation.created"}`, string(msg))

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestServeWsRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())

	parse := func(string) (*session.Session, error) { return nil, errors.New("invalid") }

	for _, target := range []string{"/ws", "/ws?token=nope"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		ServeWs(hub, c, parse)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestHubShutdownDisconnectsClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	tenant := uuid.New()
	parse := func(string) (*session.Session, error) {
		return &session.Session{TenantID: tenant, UserID: uuid.New()}, nil
	}
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, parse) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?token=t", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(tenant) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	assert.Zero(t, hub.ClientCount(tenant))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
