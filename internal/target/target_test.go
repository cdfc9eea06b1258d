package target

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-sec/crucible/internal/types"
)

func TestFuncTarget(t *testing.T) {
	echo := Func(func(ctx context.Context, input string) (string, error) {
		return "echo: " + input, nil
	})

	out, err := echo.Respond(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", out)
	assert.Equal(t, "func", echo.Name())
}

func TestResponseFailed(t *testing.T) {
	ok := Response{Output: "fine"}
	assert.False(t, ok.Failed())

	failed := Response{Err: "timeout"}
	assert.True(t, failed.Failed())
}

func TestHTTPTargetRespond(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req httpRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		json.NewEncoder(w).Encode(httpResponse{Output: "I can't help with that: " + req.Input})
	}))
	defer server.Close()

	tgt := NewHTTPTarget("chatbot", server.URL, WithHeader("X-Api-Key", "secret"))

	out, err := tgt.Respond(context.Background(), "do something bad")
	require.NoError(t, err)
	assert.Equal(t, "I can't help with that: do something bad", out)
	assert.Equal(t, "chatbot", tgt.Name())
}

func TestHTTPTargetNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tgt := NewHTTPTarget("chatbot", server.URL)

	_, err := tgt.Respond(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, types.TARGET_INVOCATION_FAILED, types.CodeOf(err))
}

func TestHTTPTargetTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	tgt := NewHTTPTarget("chatbot", server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tgt.Respond(ctx, "hello")
	require.Error(t, err)
	assert.Equal(t, types.TARGET_TIMEOUT, types.CodeOf(err))
}

func TestHTTPTargetBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	tgt := NewHTTPTarget("chatbot", server.URL)

	_, err := tgt.Respond(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, types.TARGET_INVOCATION_FAILED, types.CodeOf(err))
}

func TestMockTargetScriptAndFailures(t *testing.T) {
	tgt := NewMockTarget("first", "second")
	tgt.FailCall(1, errors.New("connection reset"))

	out, err := tgt.Respond(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = tgt.Respond(context.Background(), "b")
	assert.EqualError(t, err, "connection reset")

	assert.Equal(t, []string{"a", "b"}, tgt.Inputs())
	assert.Equal(t, 2, tgt.CallCount())
}
