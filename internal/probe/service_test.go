package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

func TestServiceProbe_CheckHealthReady(t *testing.T) {
	var hits int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer s.Close()

	sp := NewServiceProbe(zap.NewNop(), Options{Attempts: 5, Interval: time.Hour})
	res := sp.CheckHealth(context.Background(), domain.ProbeTarget{URL: s.URL})
	if !res.OK() || res.Attempts != 1 || atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("want single successful attempt, got %+v hits=%d", res, hits)
	}
}

func TestServiceProbe_CheckHealthNotReady(t *testing.T) {
	var hits int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, `{"status":"loading model"}`, http.StatusServiceUnavailable)
	}))
	defer s.Close()

	sp := NewServiceProbe(zap.NewNop(), Options{Attempts: 3, Interval: time.Millisecond})
	res := sp.CheckHealth(context.Background(), domain.ProbeTarget{URL: s.URL})
	if res.OK() {
		t.Fatalf("want failure, got %+v", res)
	}
	if res.Reason != "service not ready" || !errors.Is(res.Err, domain.ErrNotReady) {
		t.Fatalf("unexpected failure: %q %v", res.Reason, res.Err)
	}
	if res.Attempts != 3 || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("want 3 attempts, got %d (hits=%d)", res.Attempts, hits)
	}
}

func TestServiceProbe_SendPromptCarriesTemperature(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"Hello"}`))
	}))
	defer s.Close()

	temp := 0.1
	sp := NewServiceProbe(nil, Options{Temperature: &temp})
	res := sp.SendPrompt(context.Background(), domain.ProbeTarget{URL: s.URL}, "hi", 8)
	if !res.OK() || res.Attempts != 1 {
		t.Fatalf("want success, got %+v", res)
	}
}
