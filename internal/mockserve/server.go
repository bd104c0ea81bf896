package mockserve

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

// Options shapes how the stand-in inference service behaves.
type Options struct {
	WarmupChecks int           // /health answers 503 this many times before turning 200
	PromptStatus int           // status for completion requests; 0 means 200
	Reply        string        // completion text, "Hello" when empty
	Latency      time.Duration // added before every completion response
}

// Server emulates the llama.cpp completion server exposed by the Ray service.
type Server struct {
	Logger *zap.Logger
	opts   Options

	mu         sync.Mutex
	healthHits int
	prompts    []domain.PromptRequest
}

func NewServer(l *zap.Logger, o Options) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	if o.Reply == "" {
		o.Reply = "Hello"
	}
	return &Server{Logger: l, opts: o}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", s.handleHealth)
	r.Post("/", s.handleCompletion)
	r.Post("/completion", s.handleCompletion)

	return r
}

// HealthHits reports how many health checks were served.
func (s *Server) HealthHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthHits
}

// Prompts returns a copy of every completion request received.
func (s *Server) Prompts() []domain.PromptRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PromptRequest, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.healthHits++
	hit := s.healthHits
	s.mu.Unlock()

	if hit <= s.opts.WarmupChecks {
		s.Logger.Info("mock_health_loading", zap.Int("hit", hit))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading model"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type completionReply struct {
	Content         string `json:"content"`
	Text            string `json:"text"`
	TokensPredicted int    `json:"tokens_predicted"`
	Stop            bool   `json:"stop"`
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var p domain.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || strings.TrimSpace(p.Prompt) == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	s.Logger.Info("mock_completion",
		zap.Int("prompt_len", len(p.Prompt)),
		zap.Int("n_predict", p.NPredict),
	)

	if st := s.opts.PromptStatus; st != 0 && st != http.StatusOK {
		http.Error(w, "mock failure: "+http.StatusText(st), st)
		return
	}

	n := p.NPredict
	if words := len(strings.Fields(s.opts.Reply)); words < n {
		n = words
	}
	writeJSON(w, http.StatusOK, completionReply{
		Content:         s.opts.Reply,
		Text:            s.opts.Reply,
		TokensPredicted: n,
		Stop:            true,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
