package remote

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoReturnsBodyOn2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	body, err := Do(server.Client(), req)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestDoMapsStatusToHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	_, err = Do(server.Client(), req)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Body)
	assert.Equal(t, "http_status", Kind(err))
}

func TestDoMapsTransportFailureToNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	_, err = Do(&http.Client{Timeout: time.Second}, req)
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.MethodGet, netErr.Op)
	assert.Equal(t, "network", Kind(err))
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "decode", err: &DecodeError{URL: "u", Err: errors.New("bad")}, want: "decode"},
		{name: "wrapped decode", err: fmt.Errorf("list: %w", &DecodeError{URL: "u", Err: errors.New("bad")}), want: "decode"},
		{name: "plain", err: errors.New("x"), want: "other"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Kind(tc.err))
		})
	}
}

func TestClipBody(t *testing.T) {
	long := strings.Repeat("a", maxBodyInError+10)
	clipped := clipBody([]byte(long))
	assert.True(t, strings.HasSuffix(clipped, "..."))
	assert.Equal(t, maxBodyInError+3, len(clipped))
}

func TestPickHTTPClient(t *testing.T) {
	custom := &http.Client{}
	assert.Same(t, custom, PickHTTPClient(custom, time.Second))
	assert.Equal(t, defaultTimeout, PickHTTPClient(nil, 0).Timeout)
	assert.Equal(t, 5*time.Second, PickHTTPClient(nil, 5*time.Second).Timeout)
}
