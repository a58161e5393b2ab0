package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"crm/internal/config"
	"crm/internal/httpserver"
	"crm/internal/logging"
)

// sendResponse mirrors the WhatsApp gateway's reply to GET /send.
type sendResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error,omitempty"`
	ID     string `json:"id,omitempty"`
}

type server struct {
	cfg   config.MockGatewayConfig
	idx   uint64
	rng   *rand.Rand
	rngMu sync.Mutex
}

func main() {
	cfg := config.LoadMockGateway()
	logging.Init("mock-gateway", cfg.LogFormat, cfg.LogLevel)

	s := &server{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if len(s.cfg.Outcomes) == 0 {
		s.cfg.Outcomes = []string{"ok"}
	}

	router := mux.NewRouter()
	router.HandleFunc("/send", s.handleSend).Methods(http.MethodGet)
	router.HandleFunc("/healthz", httpserver.Healthz()).Methods(http.MethodGet)

	slog.Info("mock gateway listening", "port", cfg.Port, "mode", cfg.OutcomeMode, "outcomes", cfg.Outcomes)
	if err := http.ListenAndServe(":"+cfg.Port, httpserver.Logging(router)); err != nil {
		slog.Error("mock gateway server failed", "err", err)
		os.Exit(1)
	}
}

func (s *server) handleSend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if s.cfg.APIKey != "" && q.Get("api_key") != s.cfg.APIKey {
		writeJSON(w, http.StatusUnauthorized, sendResponse{Error: "invalid api key"})
		return
	}
	if q.Get("phone") == "" || q.Get("text") == "" {
		writeJSON(w, http.StatusOK, sendResponse{Error: "phone and text are required"})
		return
	}

	if s.cfg.Delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.cfg.Delay):
		}
	}

	outcome := s.nextOutcome()
	slog.Info("mock send", "phone", q.Get("phone"), "outcome", outcome, "chars", len(q.Get("text")))

	switch outcome {
	case "ok", "success":
		writeJSON(w, http.StatusOK, sendResponse{Status: true, ID: "wa_" + ulid.Make().String()})
	case "rejected", "failed":
		writeJSON(w, http.StatusOK, sendResponse{Error: "number not on WhatsApp"})
	case "unauthorized", "401":
		writeJSON(w, http.StatusUnauthorized, sendResponse{Error: "invalid api key"})
	case "server_error", "500":
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	case "malformed":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	case "hang":
		<-r.Context().Done()
	default:
		writeJSON(w, http.StatusOK, sendResponse{Error: "mock error: " + outcome})
	}
}

func (s *server) nextOutcome() string {
	outcomes := s.cfg.Outcomes
	switch strings.ToLower(s.cfg.OutcomeMode) {
	case "round_robin":
		i := atomic.AddUint64(&s.idx, 1) - 1
		return strings.TrimSpace(outcomes[int(i%uint64(len(outcomes)))])
	case "weighted":
		s.rngMu.Lock()
		ok := s.rng.Float64() <= s.cfg.SuccessRate
		i := s.rng.Intn(len(outcomes))
		s.rngMu.Unlock()
		if ok {
			return "ok"
		}
		// failures are drawn from the configured list, skipping "ok"
		if o := strings.TrimSpace(outcomes[i]); o != "ok" {
			return o
		}
		return "rejected"
	case "random":
		s.rngMu.Lock()
		i := s.rng.Intn(len(outcomes))
		s.rngMu.Unlock()
		return strings.TrimSpace(outcomes[i])
	default:
		return strings.TrimSpace(outcomes[0])
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
