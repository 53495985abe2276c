package sessiond

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/clubroyale/auction-league/internal/platform/logging"
	"github.com/clubroyale/auction-league/internal/usecase"
)

func TestClientVerifyAccessToken_SendsAdminKeyAndParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/introspect", r.URL.Path)
		require.Equal(t, "admin-secret", r.Header.Get("x-admin-key"))

		var req map[string]string
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "token-abc", req["token"])

		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"active":  true,
			"user_id": "user-123",
			"email":   "manager@example.com",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", "admin-secret",
		CircuitBreakerConfig{Enabled: false}, logging.NewNop())

	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	require.NoError(t, err)
	require.Equal(t, "user-123", principal.UserID)
	require.Equal(t, "manager@example.com", principal.Email)
}

func TestClientVerifyAccessToken_InactiveToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{"active": false})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", "admin-secret",
		CircuitBreakerConfig{Enabled: false}, logging.NewNop())

	_, err := client.VerifyAccessToken(context.Background(), "invalid-token")
	require.True(t, errors.Is(err, usecase.ErrUnauthorized))
}

func TestClientVerifyAccessToken_ForbiddenMappedToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", "wrong-key",
		CircuitBreakerConfig{Enabled: false}, logging.NewNop())

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	require.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
}

func TestClientVerifyAccessToken_CircuitOpensAfterServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", "admin-secret",
		CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
		logging.NewNop())

	for i := 0; i < 2; i++ {
		_, err := client.VerifyAccessToken(context.Background(), "token-abc")
		require.Error(t, err)
	}

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	require.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	require.Equal(t, int32(2), calls.Load())
}
