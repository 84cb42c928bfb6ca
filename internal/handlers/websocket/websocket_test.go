package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wstypes "contenthub-service/internal/domain/websocket"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/session"
	ws "contenthub-service/internal/websocket"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*httptest.Server, *ws.Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := jwt.NewManager(key, jwt.Config{Issuer: "contenthub", Audience: "contenthub-users", TTL: time.Hour})
	sessions := session.NewManager(rdb, 5)

	tok, err := tokens.Generator.GenerateAccessToken(3, "carol", "")
	require.NoError(t, err)
	require.NoError(t, sessions.CreateSession(context.Background(), &session.SessionData{
		JTI: tok.JTI, UserID: 3, Username: "carol", ExpiresAt: tok.ExpiresAt,
	}))

	hub := ws.NewHub(tokens.Verifier, sessions, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	h := NewWebSocketHandler(hub, []string{"http://app.example.com"}, zap.NewNop())
	r := gin.New()
	r.GET("/ws", h.HandleConnection)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		rdb.Close()
		mr.Close()
	})
	return srv, hub, tok.Value
}

func TestHandleConnection_PushAndPing(t *testing.T) {
	srv, hub, token := setup(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var msg wstypes.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, wstypes.EventTypeConnected, msg.Type)

	require.NoError(t, conn.WriteJSON(wstypes.NewMessage(wstypes.EventTypePing, nil)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, wstypes.EventTypePong, msg.Type)

	hub.SendToUser(3, wstypes.NewMessage(wstypes.EventTypeSubscriptionCancelled, wstypes.SubscriptionEventData{EntryID: 9}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, wstypes.EventTypeSubscriptionCancelled, msg.Type)
}

func TestHandleConnection_Rejects(t *testing.T) {
	srv, _, token := setup(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws?token=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	_, resp, err = websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
