package beds24

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSendsCodeHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authentication/setup", r.URL.Path)
		assert.Equal(t, "invite-123", r.Header.Get("code"))
		w.Write([]byte(`{"token":"acc","expiresIn":86400,"refreshToken":"ref"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL+"/", time.Second).Setup(context.Background(), "invite-123")
	require.NoError(t, err)
	assert.Equal(t, "ref", res.RefreshToken)
	assert.Equal(t, 86400, res.ExpiresIn)
}

func TestTokenSendsRefreshHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authentication/token", r.URL.Path)
		assert.Equal(t, "ref", r.Header.Get("refreshToken"))
		w.Write([]byte(`{"token":"acc","expiresIn":3600}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Token(context.Background(), "ref")
	require.NoError(t, err)
	assert.Equal(t, "acc", res.Token)
}

func TestUpstreamErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"Invalid code"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Setup(context.Background(), "bad")
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "Invalid code")
}

func TestMissingTokenIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Token(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrUpstream)
}
