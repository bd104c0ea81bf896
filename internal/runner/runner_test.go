package runner

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/llamaprobe/internal/domain"
	"github.com/hamed0406/llamaprobe/internal/mockserve"
	"github.com/hamed0406/llamaprobe/internal/probe"
)

// --- fakes ---

type memNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (m *memNotifier) Send(ctx context.Context, title, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, title)
	return nil
}

func fastProbe(attempts int) *probe.ServiceProbe {
	return probe.NewServiceProbe(zap.NewNop(), probe.Options{
		Attempts:      attempts,
		Interval:      time.Millisecond,
		ErrorInterval: time.Millisecond,
		HealthTimeout: time.Second,
		PromptTimeout: time.Second,
	})
}

func startMock(t *testing.T, o mockserve.Options) (*mockserve.Server, domain.ProbeTarget) {
	t.Helper()
	srv := mockserve.NewServer(zap.NewNop(), o)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, domain.ProbeTarget{URL: ts.URL}
}

// --- tests ---

func TestRun_HealthyPromptSuccess(t *testing.T) {
	srv, tgt := startMock(t, mockserve.Options{WarmupChecks: 2})
	var out bytes.Buffer
	nt := &memNotifier{}

	r := NewRunner(zap.NewNop(), fastProbe(5), nil, nt, &out, Config{
		Target: tgt, Prompt: "Hello, my name is", NPredict: 50,
	})
	if code := r.Run(context.Background()); code != ExitOK {
		t.Fatalf("want exit 0, got %d\n%s", code, out.String())
	}
	if srv.HealthHits() != 3 {
		t.Fatalf("want 3 health hits (2 warm-up), got %d", srv.HealthHits())
	}
	if len(srv.Prompts()) != 1 {
		t.Fatalf("want exactly one prompt, got %d", len(srv.Prompts()))
	}

	s := out.String()
	for _, want := range []string{"Health check: 200", "Sending request to " + tgt.URL, "Status code: 200", `"text": "Hello"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
	if len(nt.titles) != 1 || nt.titles[0] != "llamaprobe: service ready" {
		t.Fatalf("unexpected notifications: %v", nt.titles)
	}
}

func TestRun_PromptFailureStillExitsZero(t *testing.T) {
	_, tgt := startMock(t, mockserve.Options{PromptStatus: 500})
	var out bytes.Buffer

	r := NewRunner(zap.NewNop(), fastProbe(3), nil, nil, &out, Config{
		Target: tgt, Prompt: "hi", NPredict: 5,
	})
	if code := r.Run(context.Background()); code != ExitOK {
		t.Fatalf("want exit 0 after a healthy check, got %d", code)
	}
	if !strings.Contains(out.String(), "Status code: 500") || !strings.Contains(out.String(), "Error response: mock failure") {
		t.Fatalf("want raw error text in output:\n%s", out.String())
	}
}

func TestRun_FailOnPromptError(t *testing.T) {
	_, tgt := startMock(t, mockserve.Options{PromptStatus: 502})

	r := NewRunner(zap.NewNop(), fastProbe(3), nil, nil, nil, Config{
		Target: tgt, Prompt: "hi", NPredict: 5, FailOnPromptError: true,
	})
	if code := r.Run(context.Background()); code != ExitPromptFailed {
		t.Fatalf("want exit %d, got %d", ExitPromptFailed, code)
	}
}

func TestRun_UnreachableExitsOne(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	tgt := domain.ProbeTarget{URL: ts.URL}
	ts.Close()

	var out bytes.Buffer
	nt := &memNotifier{}
	r := NewRunner(zap.NewNop(), fastProbe(3), probe.NewDiagnostics(time.Second), nt, &out, Config{
		Target: tgt, Prompt: "hi", NPredict: 5,
	})
	if code := r.Run(context.Background()); code != ExitNotReady {
		t.Fatalf("want exit 1, got %d", code)
	}

	s := out.String()
	if !strings.Contains(s, "Health check failed: service not ready (3 attempts, no response)") {
		t.Fatalf("unexpected output:\n%s", s)
	}
	if !strings.Contains(s, "TCP FAIL") {
		t.Fatalf("want diagnostics in output:\n%s", s)
	}
	if strings.Contains(s, "Sending request") {
		t.Fatalf("prompt must not be sent when not ready:\n%s", s)
	}
	if len(nt.titles) != 1 || nt.titles[0] != "llamaprobe: service not ready" {
		t.Fatalf("unexpected notifications: %v", nt.titles)
	}
}

func TestRun_NeverHealthyExitsOne(t *testing.T) {
	srv, tgt := startMock(t, mockserve.Options{WarmupChecks: 100})

	r := NewRunner(zap.NewNop(), fastProbe(4), nil, nil, nil, Config{
		Target: tgt, Prompt: "hi", NPredict: 5,
	})
	if code := r.Run(context.Background()); code != ExitNotReady {
		t.Fatalf("want exit 1, got %d", code)
	}
	if srv.HealthHits() != 4 {
		t.Fatalf("want exactly 4 attempts, got %d", srv.HealthHits())
	}
	if len(srv.Prompts()) != 0 {
		t.Fatalf("no prompt expected")
	}
}

func TestRun_SkipHealth(t *testing.T) {
	srv, tgt := startMock(t, mockserve.Options{WarmupChecks: 100})

	r := NewRunner(zap.NewNop(), fastProbe(4), nil, nil, nil, Config{
		Target: tgt, Prompt: "hi", NPredict: 5, SkipHealth: true,
	})
	if code := r.Run(context.Background()); code != ExitOK {
		t.Fatalf("want exit 0, got %d", code)
	}
	if srv.HealthHits() != 0 || len(srv.Prompts()) != 1 {
		t.Fatalf("want prompt without health check, got hits=%d prompts=%d", srv.HealthHits(), len(srv.Prompts()))
	}
}

func TestPrintPrompt_TransportError(t *testing.T) {
	var out bytes.Buffer
	printPrompt(&out, domain.Failure("dial tcp: connection refused", nil))
	if out.String() != "Error: dial tcp: connection refused\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
