package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/notional/api"
)

func TestClient_Request(t *testing.T) {
	var got *http.Request
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","results":[],"has_more":false,"next_cursor":null}`))
	}))
	defer srv.Close()

	c := New("secret_abc", WithBaseURL(srv.URL+"/v1/"), WithHTTPClient(srv.Client()))
	data, err := c.Request(context.Background(), api.MethodPost, "databases/x/query", map[string]any{"page_size": 10})
	require.NoError(t, err)

	var list api.ListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.False(t, list.HasMore)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/databases/x/query", got.URL.Path)
	assert.Equal(t, "Bearer secret_abc", got.Header.Get("Authorization"))
	assert.Equal(t, DefaultAPIVersion, got.Header.Get("Notion-Version"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"page_size":10}`, gotBody)
}

func TestClient_GetHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Equal(t, "page_size=100", r.URL.RawQuery)
		assert.Equal(t, "2025-09-03", r.Header.Get("Notion-Version"))
		_, _ = w.Write([]byte(`{"object":"block","id":"b"}`))
	}))
	defer srv.Close()

	c := New("t", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithAPIVersion("2025-09-03"))
	_, err := c.Request(context.Background(), api.MethodGet, "blocks/b/children?page_size=100", nil)
	require.NoError(t, err)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`))
	}))
	defer srv.Close()

	c := New("t", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.Request(context.Background(), api.MethodGet, "pages/p", nil)

	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 404, te.Status)
	assert.Contains(t, string(te.Body), "object_not_found")

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "object_not_found", ae.Code)
}

func TestClient_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New("t", WithBaseURL(url)).Request(context.Background(), api.MethodGet, "users", nil)
	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
	assert.Error(t, te.Err)
}

func TestClient_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	data, err := New("t", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).
		Request(context.Background(), api.MethodDelete, "blocks/b", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
