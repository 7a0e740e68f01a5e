package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UserAgentInjection(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Slateboard-Go", gotAgent)

	// An explicit User-Agent is not overridden
	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")
	resp, err = client.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "custom", gotAgent)
}

func TestClient_DefaultTimeoutApplied(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := New(&Config{DefaultTimeout: 50 * time.Millisecond})
	defer client.Close()

	start := time.Now()
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_JSONBodyMarshalled(t *testing.T) {
	var gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	resp, err := client.Request(context.Background(), http.MethodPut, server.URL, map[string]string{"status": "done"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"status":"done"}`, string(gotBody))
}

func TestClient_Hooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	var beforeCalls, afterCalls int
	client.SetBeforeRequestHook(func(r *http.Request) { beforeCalls++ })
	client.SetAfterResponseHook(func(r *http.Request, resp *http.Response, err error) {
		afterCalls++
		assert.NoError(t, err)
	})

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 1, beforeCalls)
	assert.Equal(t, 1, afterCalls)
}

func TestClient_NilRequest(t *testing.T) {
	client := New(nil)
	defer client.Close()

	_, err := client.Do(context.Background(), nil)
	assert.Error(t, err)
}
