package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"hero":"Elsa"}`, `{"hero":"Elsa"}`},
		{"```json\n{\"hero\":\"Elsa\"}\n```", `{"hero":"Elsa"}`},
		{"```\n{\"hero\":\"Elsa\"}\n```", `{"hero":"Elsa"}`},
		{"  \n```json\n{}\n```\n  ", "{}"},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %#v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "hello"}},
			},
		})
	}))
	defer ts.Close()

	client := New(ts.URL, "test-key", "gpt-4o-mini")
	content, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if content != "hello" {
		t.Fatalf("content = %q, want hello", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client := New(ts.URL, "test-key", "gpt-4o-mini")
	_, err := client.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestCompleteAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer ts.Close()

	client := New(ts.URL, "test-key", "gpt-4o-mini")
	_, err := client.Complete(context.Background(), "sys", "user")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", apiErr.Status)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	client := New("http://localhost", "", "gpt-4o-mini")
	if _, err := client.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestRawBearerOverride(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	client := New(ts.URL, "configured-key", "gpt-4o-mini")
	status, body, err := client.Raw(context.Background(), http.MethodPost, []byte(`{}`), "Bearer caller-key")
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body = %s", body)
	}
	if gotAuth != "Bearer caller-key" {
		t.Fatalf("auth header = %q, want caller override", gotAuth)
	}
}
