package mdg

import (
	"net/http"
	"strings"
	"time"

	"pricestream/internal/chaos"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/logs"
)

// StreamConfig controls the pacing of a synthetic pricing stream.
type StreamConfig struct {
	// Token is the expected bearer token, empty accepts any request.
	Token string
	// Interval separates two price ticks.
	Interval time.Duration
	// HeartbeatInterval separates two heartbeats, zero disables them.
	HeartbeatInterval time.Duration
	// MaxTicks ends the response after that many ticks, zero streams forever.
	MaxTicks int
	Chaos    chaos.Config
	Now      func() time.Time
}

// StreamServer serves /v3/accounts/{account}/pricing/stream with generated
// prices so the streamer can run without a broker account.
type StreamServer struct {
	prices Config
	cfg    StreamConfig
}

func NewStreamServer(prices Config, cfg StreamConfig) *StreamServer {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &StreamServer{prices: prices, cfg: cfg}
}

func (s *StreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/v3/accounts/") || !strings.HasSuffix(r.URL.Path, "/pricing/stream") {
		writeError(w, http.StatusNotFound, "The requested resource does not exist.")
		return
	}
	if s.cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
		writeError(w, http.StatusUnauthorized, "Insufficient authorization to perform request.")
		return
	}

	prices := s.prices
	prices.Instruments = splitInstruments(r.URL.Query().Get("instruments"))
	gen, err := NewGenerator(prices)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid value specified for 'instruments'")
		return
	}
	engine, err := chaos.NewEngine(s.cfg.Chaos)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if engine.Enabled() {
		c := s.cfg.Chaos
		logs.Warnf("chaos enabled, drop %.2f duplicate %.2f corrupt %.2f reorder %d",
			c.DropRate, c.DuplicateRate, c.CorruptRate, c.ReorderWindow)
	} else {
		// a nil engine forwards every line untouched
		engine = nil
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	emit := func(lines [][]byte) bool {
		for _, line := range lines {
			if _, err := w.Write(append(line, '\n')); err != nil {
				return false
			}
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	ticks := time.NewTicker(s.cfg.Interval)
	defer ticks.Stop()

	var heartbeats <-chan time.Time
	if s.cfg.HeartbeatInterval > 0 {
		hb := time.NewTicker(s.cfg.HeartbeatInterval)
		defer hb.Stop()
		heartbeats = hb.C
	}

	logs.Infof("synthetic stream opened for %s", strings.Join(prices.Instruments, ","))
	defer logs.Infof("synthetic stream closed for %s", strings.Join(prices.Instruments, ","))

	sent := 0
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeats:
			if !emit(engine.Process(encodeLine(Heartbeat(s.cfg.Now())))) {
				return
			}
		case <-ticks.C:
			if !emit(engine.Process(encodeLine(gen.Next(s.cfg.Now())))) {
				return
			}
			sent++
			if s.cfg.MaxTicks > 0 && sent >= s.cfg.MaxTicks {
				emit(engine.Flush())
				return
			}
		}
	}
}

func encodeLine(v any) []byte {
	b, err := sonic.Marshal(v)
	if err != nil {
		logs.Errorf("encode synthetic message, err: %+v", err)
		return nil
	}
	return b
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := sonic.Marshal(map[string]string{"errorMessage": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func splitInstruments(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
