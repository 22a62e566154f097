package doozer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddielabs/maddie/internal/conversation"
	"github.com/maddielabs/maddie/internal/log"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		SubscriptionKey: "sub-key",
		APIKey:          "api-key",
		DoozerName:      "maddie",
		HubID:           "581898583",
		AgentID:         "42910897",
	}
}

// newTestServer returns a server replying with the given envelope output
// and a pointer to the last captured request body and headers.
func newTestServer(t *testing.T, output string) (*httptest.Server, *http.Request, *[]byte) {
	t.Helper()
	var captured http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		body, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]string{"output": output})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured, &body
}

func TestSend(t *testing.T) {
	t.Parallel()

	t.Run("parses double-encoded output with citations", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, `{"answer":"hi","citations":[{"name":"doc1","content":"x"}]}`)
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		resp, err := client.Send(context.Background(), Request{Query: "hello"})
		require.NoError(t, err)

		assert.Equal(t, "hi", resp.Message)
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, conversation.Citation{Name: "doc1", Content: "x"}, resp.Sources[0])
		assert.Empty(t, resp.FollowUpQuestions)
		assert.True(t, strings.HasPrefix(resp.ID, "doozer_"))
	})

	t.Run("plain text output degrades gracefully", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, "plain text")
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		resp, err := client.Send(context.Background(), Request{Query: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "plain text", resp.Message)
		assert.Empty(t, resp.Sources)
	})

	t.Run("empty output falls back to placeholder", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, "")
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		resp, err := client.Send(context.Background(), Request{Query: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "No response received", resp.Message)
	})

	t.Run("missing answer field falls back to placeholder", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, `{"citations":[]}`)
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		resp, err := client.Send(context.Background(), Request{Query: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "No response received", resp.Message)
	})

	t.Run("builds the Tool/execute payload", func(t *testing.T) {
		t.Parallel()
		srv, captured, body := newTestServer(t, `{"answer":"ok"}`)
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		_, err = client.Send(context.Background(), Request{
			Query: "where is my order?",
			ConversationHistory: []conversation.HistoryItem{
				{Prompt: "a", Answer: "b", CreatedAt: "2025-06-01T12:00:01.000Z"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "/Tool/execute", captured.URL.Path)
		assert.Equal(t, "sub-key", captured.Header.Get("ocp-apim-subscription-key"))
		assert.Equal(t, "api-key", captured.Header.Get("api_key"))

		var payload executePayload
		require.NoError(t, json.Unmarshal(*body, &payload))
		assert.Equal(t, "maddie", payload.DoozerName)
		require.Len(t, payload.Variables, 1)

		v := payload.Variables[0]
		assert.Equal(t, "Box - Ask Agent Hub Question", v.AbilityName)
		assert.True(t, v.ReturnResult)
		assert.Contains(t, v.Params, "question=where is my order?")
		assert.Contains(t, v.Params, "~hub_id=581898583")
		assert.Contains(t, v.Params, "~agent_id=42910897")
		assert.Contains(t, v.Params, `~conversation_history=[{"prompt":"a","answer":"b","created_at":"2025-06-01T12:00:01.000Z"}]`)
	})

	t.Run("request overrides take precedence over config defaults", func(t *testing.T) {
		t.Parallel()
		srv, _, body := newTestServer(t, `{"answer":"ok"}`)
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		_, err = client.Send(context.Background(), Request{
			Query:   "q",
			HubID:   "111",
			AgentID: "222",
		})
		require.NoError(t, err)

		var payload executePayload
		require.NoError(t, json.Unmarshal(*body, &payload))
		assert.Contains(t, payload.Variables[0].Params, "~hub_id=111")
		assert.Contains(t, payload.Variables[0].Params, "~agent_id=222")
	})

	t.Run("nil history serializes as empty array", func(t *testing.T) {
		t.Parallel()
		srv, _, body := newTestServer(t, `{"answer":"ok"}`)
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		_, err = client.Send(context.Background(), Request{Query: "q"})
		require.NoError(t, err)

		var payload executePayload
		require.NoError(t, json.Unmarshal(*body, &payload))
		assert.Contains(t, payload.Variables[0].Params, "~conversation_history=[]")
	})

	t.Run("non-success status yields TransportError", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		_, err = client.Send(context.Background(), Request{Query: "q"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAgent)

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusBadGateway, te.Status)
	})

	t.Run("network failure yields uniform error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // connection refused from here on

		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		_, err = client.Send(context.Background(), Request{Query: "q"})
		assert.ErrorIs(t, err, ErrAgent)
	})

	t.Run("malformed envelope yields uniform error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		t.Cleanup(srv.Close)

		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		_, err = client.Send(context.Background(), Request{Query: "q"})
		assert.ErrorIs(t, err, ErrAgent)
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, `{"answer":"ok"}`)
		client, err := New(testConfig(srv.URL), log.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = client.Send(ctx, Request{Query: "q"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAgent) || errors.Is(err, context.Canceled))
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, log.NewNop())
	assert.Error(t, err, "missing base URL must be rejected")
}
