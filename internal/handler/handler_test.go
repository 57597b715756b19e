package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/registry"
	"chatrelay/internal/app/user"
	"chatrelay/internal/configs"
)

// apiResponse mirrors the wire shape produced by the resp package.
type apiResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

func newTestServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:    "development",
		Port:           3000,
		AllowedOrigins: []string{},
	}

	reg := registry.New()
	hub := chat.NewHub(reg)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	srv := httptest.NewServer(Router(&AppDeps{
		Registry: reg,
		Hub:      hub,
		Config:   cfg,
	}))
	t.Cleanup(srv.Close)

	return srv, reg
}

func postNewUser(t *testing.T, srv *httptest.Server, body []byte) (*http.Response, apiResponse) {
	t.Helper()

	res, err := http.Post(srv.URL+"/new-user", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })

	var decoded apiResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res, decoded
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var decoded apiResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	require.Equal(t, "ok", decoded.Status)
	require.Equal(t, "Chat backend is running!", decoded.Message)
}

func TestRegister_Success(t *testing.T) {
	srv, reg := newTestServer(t)

	res, decoded := postNewUser(t, srv, []byte(`{"name":"Alice"}`))

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", decoded.Status)
	require.NotNil(t, decoded.User)
	require.NotEmpty(t, decoded.User.ID)
	require.Equal(t, "Alice", decoded.User.Name)

	require.Len(t, reg.Snapshot(), 1)
}

func TestRegister_CaseInsensitiveCollision(t *testing.T) {
	srv, reg := newTestServer(t)

	res, _ := postNewUser(t, srv, []byte(`{"name":"Alice"}`))
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, decoded := postNewUser(t, srv, []byte(`{"name":"alice"}`))
	require.Equal(t, http.StatusConflict, res.StatusCode)
	require.Equal(t, "error", decoded.Status)
	require.Equal(t, "This name is already taken!", decoded.Message)

	// failed registration leaves the registry unchanged
	require.Len(t, reg.Snapshot(), 1)
}

func TestRegister_EmptyBody(t *testing.T) {
	srv, reg := newTestServer(t)

	res, decoded := postNewUser(t, srv, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "error", decoded.Status)
	require.NotEmpty(t, decoded.Message)

	require.Empty(t, reg.Snapshot())
}

func TestRegister_BlankName(t *testing.T) {
	srv, _ := newTestServer(t)

	res, decoded := postNewUser(t, srv, []byte(`{"name":"   "}`))
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "error", decoded.Status)
	require.Equal(t, "A name is required!", decoded.Message)
}

func TestRegister_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	res, decoded := postNewUser(t, srv, []byte(`{oops`))
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "error", decoded.Status)
}

func TestWebSocket_SharesRegistryWithGateway(t *testing.T) {
	srv, _ := newTestServer(t)

	res, decoded := postNewUser(t, srv, []byte(`{"name":"Alice"}`))
	require.Equal(t, http.StatusOK, res.StatusCode)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, wsRes, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if wsRes != nil && wsRes.Body != nil {
		wsRes.Body.Close()
	}
	defer conn.Close()

	// the unsolicited connect snapshot reflects the HTTP registration
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var usersList chat.UsersListMessage
	require.NoError(t, json.Unmarshal(raw, &usersList))
	require.Equal(t, chat.TypeUsersList, usersList.Type)
	require.Len(t, usersList.Users, 1)
	require.Equal(t, *decoded.User, usersList.Users[0])
}
