package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"stayhub/internal/auth"
	"stayhub/internal/middleware"
	"stayhub/internal/model"
	"stayhub/internal/permission"
	"stayhub/internal/session"
)

type grantAll struct{ set permission.Set }

func (g grantAll) Effective(_ context.Context, _ *session.Session) (permission.Set, error) {
	return g.set, nil
}

func (g grantAll) Locations(_ context.Context, _ *session.Session, _ ...permission.Capability) ([]uuid.UUID, bool, error) {
	return nil, true, nil
}

// testAPI wires auth for a router and issues tokens for it.
type testAPI struct {
	router *gin.Engine
	tokens *auth.Tokens
}

func newTestAPI(t *testing.T, caps ...permission.Capability) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokens("handler-test-secret", time.Hour)
	set := permission.Set{}
	for _, c := range caps {
		set[c] = true
	}
	middleware.InitAuth(tokens, grantAll{set: set}, false, 0)
	t.Cleanup(func() { middleware.InitAuth(nil, nil, false, 0) })
	return &testAPI{router: gin.New(), tokens: tokens}
}

func (a *testAPI) token(t *testing.T) (string, *model.User) {
	t.Helper()
	user := &model.User{ID: uuid.New(), TenantID: uuid.New(), Email: "staff@example.com", Role: model.RoleStaff}
	signed, err := a.tokens.Issue(user)
	require.NoError(t, err)
	return signed, user
}

func (a *testAPI) do(method, path, bearer, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, w.Code, env.StatusCode)
	return env
}
