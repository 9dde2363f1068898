package revopt

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, cs *ChatStream) []string {
	t.Helper()
	var fragments []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case fragment, ok := <-cs.Events():
			if !ok {
				return fragments
			}
			fragments = append(fragments, fragment)
		case <-timeout:
			t.Fatal("chat stream never ended")
		}
	}
}

func TestChatStream_YieldsFragmentsUntilDone(t *testing.T) {
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeSSE(t, w, `{"content":"Hi","done":false}`)
		writeSSE(t, w, `{"content":" there","done":false}`)
		writeSSE(t, w, `{"content":"","done":true}`)
		writeSSE(t, w, `{"content":"never","done":false}`)
	})

	cs, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "hello"})
	require.NoError(t, err)
	defer cs.Close()

	assert.Equal(t, []string{"Hi", " there"}, collect(t, cs))
	assert.Equal(t, "Hi there", cs.Text())
	assert.NoError(t, cs.Err())
}

func TestChatStream_DoneFrameWithContentIsYielded(t *testing.T) {
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(t, w, `{"content":"bye","done":true}`)
	})

	cs, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "x"})
	require.NoError(t, err)
	defer cs.Close()

	assert.Equal(t, []string{"bye"}, collect(t, cs))
}

func TestChatStream_MalformedFrameSkipped(t *testing.T) {
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(t, w, `{"content":"a","done":false}`)
		writeSSE(t, w, `{{{`)
		writeSSE(t, w, `{"content":"b","done":true}`)
	})

	cs, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "x"})
	require.NoError(t, err)
	defer cs.Close()

	assert.Equal(t, []string{"a", "b"}, collect(t, cs))
}

func TestChatStream_TransportErrorSurfacesSynchronously(t *testing.T) {
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid session token"})
	})

	_, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "x"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrAuthentication, apiErr.Type)
	assert.Equal(t, "Invalid session token", apiErr.Message)
}

func TestChatStream_NewStreamSupersedesOldOne(t *testing.T) {
	release := make(chan struct{})
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Message {
		case "first":
			writeSSE(t, w, `{"content":"one","done":false}`)
			<-release
		default:
			writeSSE(t, w, `{"content":"two","done":true}`)
		}
	})
	defer close(release)

	first, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "first"})
	require.NoError(t, err)

	second, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "second"})
	require.NoError(t, err)

	assert.Equal(t, []string{"two"}, collect(t, second))

	// The superseded stream was closed; it ends without error.
	first.Text()
	assert.NoError(t, first.Err())
}

func TestChatStream_OldStreamClosedBeforeNewRequestIsSent(t *testing.T) {
	secondRelease := make(chan struct{})
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Message {
		case "first":
			writeSSE(t, w, `{"content":"one","done":false}`)
			<-r.Context().Done()
		default:
			// Hold the response headers back so the superseding call is
			// still in flight while the old stream's fate is checked.
			<-secondRelease
			writeSSE(t, w, `{"content":"two","done":true}`)
		}
	})

	first, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "first"})
	require.NoError(t, err)

	select {
	case fragment := <-first.Events():
		assert.Equal(t, "one", fragment)
	case <-time.After(2 * time.Second):
		t.Fatal("first stream never delivered")
	}

	type opened struct {
		cs  *ChatStream
		err error
	}
	results := make(chan opened, 1)
	go func() {
		cs, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "second"})
		results <- opened{cs, err}
	}()

	// The old stream must end before the new request completes; it yields
	// nothing further.
	assert.Empty(t, collect(t, first))
	first.Text()
	assert.NoError(t, first.Err())

	close(secondRelease)
	res := <-results
	require.NoError(t, res.err)
	defer res.cs.Close()
	assert.Equal(t, []string{"two"}, collect(t, res.cs))
}

func TestChatStream_CloseStopsDelivery(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(t, w, `{"content":"one","done":false}`)
		<-release
	})

	cs, err := client.Chat.Stream(context.Background(), &ChatRequest{Message: "x"})
	require.NoError(t, err)

	fragment := <-cs.Events()
	assert.Equal(t, "one", fragment)

	require.NoError(t, cs.Close())
	cs.Text()
	assert.NoError(t, cs.Err())
}

func TestChatService_Messages(t *testing.T) {
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, chatMessagesPath, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{
				{"role": "user", "content": "hello"},
				{"role": "assistant", "content": "hi"},
			},
		})
	})

	msgs, err := client.Chat.Messages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "hi", msgs[1].Content)
}

func TestChatService_ClearMessages(t *testing.T) {
	var method string
	_, client := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Chat.ClearMessages(context.Background()))
	assert.Equal(t, http.MethodDelete, method)
}
