package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	perr "hansard/internal/platform/errors"
)

const okReply = `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
"choices":[{"index":0,"message":{"role":"assistant","content":"  {\"ok\":true}  "},"finish_reason":"stop"}],
"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Options{APIKey: "test-key", BaseURL: srv.URL + "/v1", RetryBase: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(Options{APIKey: "  "}); perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("err = %v", err)
	}
}

func TestComplete_SendsSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth = %q", got)
		}
		var body struct {
			Model          string `json:"model"`
			Messages       []struct{ Role, Content string }
			ResponseFormat struct {
				Type       string `json:"type"`
				JSONSchema struct {
					Name   string          `json:"name"`
					Strict bool            `json:"strict"`
					Schema json.RawMessage `json:"schema"`
				} `json:"json_schema"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Model != defaultModel || len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("body = %+v", body)
		}
		if body.ResponseFormat.Type != "json_schema" || body.ResponseFormat.JSONSchema.Name != "speech_summary" || !body.ResponseFormat.JSONSchema.Strict {
			t.Errorf("response_format = %+v", body.ResponseFormat)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okReply))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv).Complete(context.Background(), Request{
		System:     "sys",
		User:       "user",
		SchemaName: "speech_summary",
		Schema:     json.RawMessage(`{"type":"object"}`),
		Strict:     true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("content = %q", got)
	}
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		_, _ = w.Write([]byte(okReply))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv).Complete(context.Background(), Request{System: "s", User: "u"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestComplete_GivesUpOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Complete(context.Background(), Request{System: "s", User: "u"})
	if perr.CodeOf(err) != perr.ErrorCodeUnavailable {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != defaultAttempts {
		t.Fatalf("calls = %d, want %d", calls.Load(), defaultAttempts)
	}
}

func TestComplete_NoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad schema","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Complete(context.Background(), Request{System: "s", User: "u"})
	if perr.CodeOf(err) != perr.ErrorCodeInvalidArgument || calls.Load() != 1 {
		t.Fatalf("err = %v calls = %d", err, calls.Load())
	}
}
