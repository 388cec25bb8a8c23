// Package server exposes calibration results over HTTP: the two discount
// term structures and the merged per-option table, JSON-encoded, with
// optional zstd response compression and Redis response caching.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/meenmo/optcurve/parity"
)

// Server serves the most recent calibration result. Results are swapped in
// atomically; requests observe either the old run or the new one, never a
// mix.
type Server struct {
	mu         sync.RWMutex
	underlying string
	tradeDate  time.Time
	result     *parity.Result

	cache *Cache
}

// Option customizes a Server.
type Option func(*Server)

// WithCache enables Redis response caching.
func WithCache(c *Cache) Option {
	return func(s *Server) { s.cache = c }
}

func New(opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetResult publishes a new calibration run.
func (s *Server) SetResult(underlying string, tradeDate time.Time, res *parity.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.underlying = underlying
	s.tradeDate = tradeDate
	s.result = res
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

func (s *Server) snapshot() (string, time.Time, *parity.Result) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.underlying, s.tradeDate, s.result
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/termstructure/{method}", s.handleTermStructure).Methods(http.MethodGet)
	api.HandleFunc("/options/calibrated", s.handleOptions).Methods(http.MethodGet)
	return r
}

// Handler wraps the router with response compression.
func (s *Server) Handler() http.Handler {
	return ZstdMiddleware(s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleTermStructure(w http.ResponseWriter, r *http.Request) {
	method := mux.Vars(r)["method"]
	if method != parity.MethodDirect && method != parity.MethodSmooth {
		http.Error(w, "unknown method: want direct or smooth_curve", http.StatusBadRequest)
		return
	}

	underlying, tradeDate, res := s.snapshot()
	if res == nil {
		http.Error(w, "no calibration result available", http.StatusServiceUnavailable)
		return
	}

	key := cacheKey("termstructure", underlying, tradeDate, method)
	if s.serveCached(w, r, key) {
		return
	}

	ts := res.Direct
	if method == parity.MethodSmooth {
		ts = res.Smooth
	}
	resp := termStructureResponse{
		Underlying: underlying,
		TradeDate:  tradeDate.Format("2006-01-02"),
		Method:     ts.Method,
	}
	for _, te := range ts.Tenors {
		resp.Tenors = append(resp.Tenors, tenorJSON{
			Expiry:       te.Expiry.Format("2006-01-02"),
			Days:         te.Days,
			Years:        te.Years,
			Rate:         te.Rate,
			Status:       te.Status.String(),
			Forward:      jsonPos(te.Forward.Forward),
			ForwardRatio: jsonPos(te.Forward.Ratio),
		})
	}
	if method == parity.MethodSmooth && res.SmoothErr == nil {
		resp.Curve = &curveJSON{
			Beta0: res.SmoothParams.Beta0,
			Beta1: res.SmoothParams.Beta1,
			Beta2: res.SmoothParams.Beta2,
			Tau:   res.SmoothParams.Tau,
		}
	}
	s.writeJSON(w, r, key, resp)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	underlying, tradeDate, res := s.snapshot()
	if res == nil {
		http.Error(w, "no calibration result available", http.StatusServiceUnavailable)
		return
	}

	key := cacheKey("options", underlying, tradeDate, "")
	if s.serveCached(w, r, key) {
		return
	}

	resp := optionsResponse{
		Underlying: underlying,
		TradeDate:  tradeDate.Format("2006-01-02"),
	}
	for _, co := range res.Options {
		resp.Options = append(resp.Options, optionJSON{
			Expiry:        co.Expiry.Format("2006-01-02"),
			Type:          string(co.Type),
			Strike:        co.Strike,
			Spot:          co.Spot,
			Last:          co.LastPrice,
			Volume:        co.Volume,
			DirectRate:    jsonNum(co.DirectRate),
			DirectStatus:  co.DirectStatus.String(),
			DirectIV:      jsonNum(co.DirectIV),
			DirectForward: jsonPos(co.DirectForward),
			SmoothRate:    jsonNum(co.SmoothRate),
			SmoothStatus:  co.SmoothStatus.String(),
			SmoothIV:      jsonNum(co.SmoothIV),
			SmoothForward: jsonPos(co.SmoothForward),
		})
	}
	s.writeJSON(w, r, key, resp)
}

// serveCached replays a cached payload when available.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if s.cache == nil {
		return false
	}
	body, ok := s.cache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	w.Write(body)
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.cache != nil {
		s.cache.Set(r.Context(), key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func cacheKey(kind, underlying string, tradeDate time.Time, method string) string {
	key := "optcurve:" + kind + ":" + underlying + ":" + tradeDate.Format("2006-01-02")
	if method != "" {
		key += ":" + method
	}
	return key
}
