package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestShouldAdvance(t *testing.T) {
	cases := []struct {
		name string
		p    *Progress
		want bool
	}{
		{"nil progress", nil, false},
		{"zero pool size", &Progress{PoolSize: 0, Completed: []int{0}}, false},
		{"empty", &Progress{PoolSize: 10}, false},
		{"partial", &Progress{PoolSize: 10, Completed: []int{0, 1, 2, 3, 4, 5, 6, 7, 8}}, false},
		{"full first pool", &Progress{PoolSize: 10, Completed: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}, true},
		{"full but wrong pool", &Progress{Pool: 1, PoolSize: 10, Completed: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}, false},
		{"second pool done", &Progress{Pool: 1, PoolSize: 3, Completed: []int{3, 4, 5}}, true},
		{"duplicates still count once", &Progress{PoolSize: 3, Completed: []int{0, 0, 1, 2}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldAdvance(tc.p); got != tc.want {
				t.Fatalf("ShouldAdvance = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/progress/kid-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Progress{PlayerID: "kid-1", Pool: 2, PoolSize: 10, Completed: []int{20, 21}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 3, time.Millisecond)
	p, err := client.Fetch(context.Background(), "kid-1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if p.Pool != 2 || len(p.Completed) != 2 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestClientAdvance(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(Progress{PlayerID: "kid-1", Pool: 1, PoolSize: 10})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 3, time.Millisecond)
	p, err := client.Advance(context.Background(), "kid-1")
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if gotPath != "/api/progress/kid-1/advance" {
		t.Fatalf("path = %s", gotPath)
	}
	if p.Pool != 1 {
		t.Fatalf("pool = %d, want 1", p.Pool)
	}
}

func TestClientAdvanceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"pool is not complete yet"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 3, time.Millisecond)
	if _, err := client.Advance(context.Background(), "kid-1"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestVerifyAdvanceEventuallySucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pool := 0
		if calls.Add(1) >= 3 {
			pool = 1
		}
		json.NewEncoder(w).Encode(Progress{PlayerID: "kid-1", Pool: pool, PoolSize: 10})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5, time.Millisecond)
	p, err := client.VerifyAdvance(context.Background(), "kid-1", 1)
	if err != nil {
		t.Fatalf("VerifyAdvance failed: %v", err)
	}
	if p.Pool != 1 {
		t.Fatalf("pool = %d, want 1", p.Pool)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("polled %d times, want 3", got)
	}
}

func TestVerifyAdvanceExhausts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(Progress{PlayerID: "kid-1", Pool: 0, PoolSize: 10})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 4, time.Millisecond)
	_, err := client.VerifyAdvance(context.Background(), "kid-1", 1)
	if !errors.Is(err, ErrVerifyExhausted) {
		t.Fatalf("err = %v, want ErrVerifyExhausted", err)
	}
	if got := calls.Load(); got != 4 {
		t.Fatalf("polled %d times, want 4", got)
	}
}

func TestVerifyAdvanceRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Progress{PlayerID: "kid-1", Pool: 0, PoolSize: 10})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(srv.URL, 5, time.Minute)
	if _, err := client.VerifyAdvance(ctx, "kid-1", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPlayerIDEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(Progress{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", 3, time.Millisecond)
	if _, err := client.Fetch(context.Background(), "kid/1"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotPath != "/api/progress/kid%2F1" {
		t.Fatalf("path = %s", gotPath)
	}
}
