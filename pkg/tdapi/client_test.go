package tdapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTokenProvider implements TokenProvider for testing.
type mockTokenProvider struct {
	token string
	err   error
	calls int
}

func (m *mockTokenProvider) Token() (string, error) {
	m.calls++
	return m.token, m.err
}

func TestNewClient(t *testing.T) {
	provider := &mockTokenProvider{token: "test-token"}
	client := NewClient("https://api.example.com", provider)

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com", client.BaseURL)
	assert.NotNil(t, client.HTTPClient)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://api.example.com/", &mockTokenProvider{})

	assert.Equal(t, "https://api.example.com", client.BaseURL)
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/test-path", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	provider := &mockTokenProvider{token: "test-token"}
	client := NewClient(server.URL, provider)

	resp, err := client.Get(context.Background(), "/test-path")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, 1, provider.calls)
}

func TestClient_GetWithParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test", r.URL.Path)
		assert.Equal(t, "value1", r.URL.Query().Get("key1"))
		assert.Equal(t, "value 2", r.URL.Query().Get("key2"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockTokenProvider{token: "test-token"})

	params := map[string]string{"key1": "value1", "key2": "value 2"}
	resp, err := client.GetWithParams(context.Background(), "/test", params)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_NoRetryOn401(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := &mockTokenProvider{token: "stale-token"}
	client := NewClient(server.URL, provider)

	resp, err := client.Get(context.Background(), "/protected")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, callCount, "should make exactly one request")
	assert.Equal(t, 1, provider.calls)
}

func TestClient_TokenProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called when the token cannot be obtained")
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockTokenProvider{err: errors.New("login required")})

	_, err := client.Get(context.Background(), "/anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get token")
	assert.Contains(t, err.Error(), "login required")
}

func TestClient_NilTokenProvider(t *testing.T) {
	client := NewClient("http://localhost", nil)

	_, err := client.Get(context.Background(), "/anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token provider")
}
