// Package server exposes the random helpers over HTTP.
package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtding233/fscoin/internal/coin"
	"github.com/xtding233/fscoin/internal/idalloc"
	"github.com/xtding233/fscoin/internal/kvstore"
	"github.com/xtding233/fscoin/internal/logging"
	"github.com/xtding233/fscoin/internal/metrics"
	"github.com/xtding233/fscoin/internal/randint"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Limits bounds per-request work.
type Limits struct {
	MaxQuantity int
	MaxRuns     int
}

// Deps are the components the handlers call into. All are required.
type Deps struct {
	Generator *randint.Generator
	Simulator *coin.Simulator
	IDs       *idalloc.Allocator
	Store     *kvstore.Store
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
	Limits    Limits
}

// Server holds the HTTP handlers.
type Server struct {
	Deps
}

// New returns a Server over d.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return &Server{Deps: d}
}

// Handler routes every endpoint, instrumented per handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, name string, h http.HandlerFunc) {
		counter := s.Metrics.Requests.MustCurryWith(prometheus.Labels{"handler": name})
		mux.Handle(pattern, promhttp.InstrumentHandlerCounter(counter, h))
	}

	route("GET /randint", "randint", s.handleRandint)
	route("GET /integers", "integers", s.handleIntegers)
	route("GET /scaled", "scaled", s.handleScaled)
	route("GET /choose", "choose", s.handleChoose)
	route("GET /simulate", "simulate", s.handleSimulate)
	route("GET /id", "id", s.handleID)
	route("GET /kv/{key}", "kv_get", s.handleKVGet)
	route("PUT /kv/{key}", "kv_put", s.handleKVPut)
	route("DELETE /kv/{key}", "kv_delete", s.handleKVDelete)
	mux.Handle("GET /metrics", s.Metrics.Handler())
	return mux
}

type errResp struct {
	Err string `json:"err"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errResp{Err: msg})
}

// parseInt64 reads a required integer query parameter.
func parseInt64(r *http.Request, key string) (int64, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, "missing param " + key
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, "invalid " + key
	}
	return v, ""
}

// parseCount reads an optional positive count, def when absent. An absent
// count never exceeds max.
func parseCount(r *http.Request, key string, def, max int) (int, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return min(def, max), ""
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, "invalid " + key
	}
	if v > max {
		return 0, key + " exceeds limit " + strconv.Itoa(max)
	}
	return v, ""
}

func parseRange(r *http.Request) (int64, int64, string) {
	start, msg := parseInt64(r, "start")
	if msg != "" {
		return 0, 0, msg
	}
	end, msg := parseInt64(r, "end")
	if msg != "" {
		return 0, 0, msg
	}
	return start, end, ""
}

// countSamples records n samples drawn for [start, end].
func (s *Server) countSamples(start, end int64, n int) {
	w, err := randint.NewRange(start, end).Width()
	if err != nil {
		return
	}
	s.Metrics.Samples.WithLabelValues(strconv.Itoa(int(w))).Add(float64(n))
}

func (s *Server) generatorErr(w http.ResponseWriter, err error) {
	if errors.Is(err, randint.ErrUnsupportedRange) || errors.Is(err, randint.ErrInvalidQuantity) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Logger.Error("random generation failed", "err", err)
	writeErr(w, http.StatusInternalServerError, "random source failure")
}

type randintResp struct {
	Value int64 `json:"value"`
}

func (s *Server) handleRandint(w http.ResponseWriter, r *http.Request) {
	start, end, msg := parseRange(r)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	v, err := s.Generator.Randint(start, end)
	if err != nil {
		s.generatorErr(w, err)
		return
	}
	s.countSamples(start, end, 1)
	writeJSON(w, http.StatusOK, randintResp{Value: v})
}

type integersResp struct {
	Values []int64 `json:"values"`
}

func (s *Server) handleIntegers(w http.ResponseWriter, r *http.Request) {
	start, end, msg := parseRange(r)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	n, msg := parseCount(r, "n", 1, s.Limits.MaxQuantity)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	vs, err := s.Generator.Integers(start, end, n)
	if err != nil {
		s.generatorErr(w, err)
		return
	}
	s.countSamples(start, end, n)
	writeJSON(w, http.StatusOK, integersResp{Values: vs})
}

type scaledResp struct {
	Values []float64 `json:"values"`
}

func (s *Server) handleScaled(w http.ResponseWriter, r *http.Request) {
	start, end, msg := parseRange(r)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	n, msg := parseCount(r, "n", 1, s.Limits.MaxQuantity)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	vs, err := s.Generator.Scaled(start, end, n)
	if err != nil {
		s.generatorErr(w, err)
		return
	}
	s.countSamples(start, end, n)
	writeJSON(w, http.StatusOK, scaledResp{Values: vs})
}

type chooseResp struct {
	Outcome int    `json:"outcome"`
	Draws   int    `json:"draws"`
	Tally   [2]int `json:"tally"`
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	res, err := s.Simulator.ChooseDetailed()
	if err != nil {
		s.Logger.Error("choose failed", "err", err)
		writeErr(w, http.StatusInternalServerError, "choose failed")
		return
	}
	s.Metrics.Choices.WithLabelValues(strconv.Itoa(res.Outcome)).Inc()
	s.Metrics.ChoiceDraws.Observe(float64(res.Draws))
	writeJSON(w, http.StatusOK, chooseResp{Outcome: res.Outcome, Draws: res.Draws, Tally: res.Tally})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	runs, msg := parseCount(r, "runs", 1000, s.Limits.MaxRuns)
	if msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}
	rep, err := s.Simulator.RunMonteCarlo(runs)
	if err != nil {
		s.Logger.Error("simulation failed", "err", err, "runs", runs)
		writeErr(w, http.StatusInternalServerError, "simulation failed")
		return
	}
	s.Metrics.Choices.WithLabelValues("1").Add(float64(rep.Ones))
	s.Metrics.Choices.WithLabelValues("0").Add(float64(rep.Zeros))
	writeJSON(w, http.StatusOK, rep)
}

type idResp struct {
	ID string `json:"id"`
}

func (s *Server) handleID(w http.ResponseWriter, r *http.Request) {
	id := s.IDs.NextID()
	s.Metrics.IDs.Inc()
	writeJSON(w, http.StatusOK, idResp{ID: id})
}

func (s *Server) storeErr(w http.ResponseWriter, key string, err error) {
	var serr *kvstore.SerializationError
	switch {
	case errors.Is(err, kvstore.ErrInvalidKey), errors.As(err, &serr):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		s.Logger.Error("store failed", "err", err, "key", key)
		writeErr(w, http.StatusInternalServerError, "store failure")
	}
}

func (s *Server) handleKVGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	raw, found, err := s.Store.GetRaw(key)
	if err != nil {
		s.storeErr(w, key, err)
		return
	}
	if !found {
		writeErr(w, http.StatusNotFound, "key not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

type okResp struct {
	OK bool `json:"ok"`
}

func (s *Server) handleKVPut(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, http.StatusRequestEntityTooLarge, "body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeErr(w, http.StatusBadRequest, "read body")
		return
	}
	if err := s.Store.SetRaw(key, body); err != nil {
		s.storeErr(w, key, err)
		return
	}
	writeJSON(w, http.StatusOK, okResp{OK: true})
}

func (s *Server) handleKVDelete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := s.Store.Remove(key); err != nil {
		s.storeErr(w, key, err)
		return
	}
	writeJSON(w, http.StatusOK, okResp{OK: true})
}
