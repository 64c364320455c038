// Package server exposes an Engine over HTTP with JSON bodies.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/axiomhq/bytesize"
)

// maxBodySize bounds request bodies; the codec is meant for short messages.
const maxBodySize = 1 << 20

// DefaultEngineCacheTTL applies when Config.EngineCacheTTL is not positive.
const DefaultEngineCacheTTL = 10 * time.Minute

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-Id"

// Config holds the options of the HTTP front-end.
type Config struct {
	// Address to listen on, e.g. "127.0.0.1:8080".
	Address string `mapstructure:"address"`
	// How long engines built for per-request custom words are kept;
	// DefaultEngineCacheTTL when zero.
	EngineCacheTTL time.Duration `mapstructure:"engine_cache_ttl"`
}

// Server answers compression requests. Requests may carry their own custom
// words; engines built for them are cached by configuration.
type Server struct {
	defaults *bytesize.Engine
	engines  *gocache.Cache
	log      *logrus.Logger
	router   *mux.Router
}

// New returns a server that uses defaults for requests without their own
// engine configuration.
func New(defaults *bytesize.Engine, cfg Config, log *logrus.Logger) *Server {
	ttl := cfg.EngineCacheTTL
	if ttl <= 0 {
		ttl = DefaultEngineCacheTTL
	}
	s := &Server{
		defaults: defaults,
		engines:  gocache.New(ttl, time.Minute),
		log:      log,
		router:   mux.NewRouter(),
	}
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/engine", s.handleEngine).Methods(http.MethodGet, http.MethodPost)
	s.router.HandleFunc("/v1/compress", s.handleCompress).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/decompress", s.handleDecompress).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/tokens", s.handleTokens).Methods(http.MethodPost)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()
	s.log.WithField("address", l.Addr().String()).Info("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// EngineOptions selects the engine for a request. Leaving both fields
// unset selects the server defaults.
type EngineOptions struct {
	CustomWords  []string `json:"custom_words,omitempty"`
	CustomSpaces *bool    `json:"custom_spaces,omitempty"`
	// Fingerprint, if set, must match the selected engine.
	Fingerprint string `json:"fingerprint,omitempty"`
}

type compressRequest struct {
	EngineOptions
	Text string `json:"text"`
}

type compressResponse struct {
	Data         []byte `json:"data"`
	Size         int    `json:"size"`
	OriginalSize int    `json:"original_size"`
	Fingerprint  string `json:"fingerprint"`
}

type decompressRequest struct {
	EngineOptions
	Data []byte `json:"data"`
}

type decompressResponse struct {
	Text string `json:"text"`
}

type tokenJSON struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Bytes int    `json:"bytes"`
	Token string `json:"token"`
}

type tokensResponse struct {
	Tokens []tokenJSON `json:"tokens"`
	Size   int         `json:"size"`
}

type engineResponse struct {
	Fingerprint  string   `json:"fingerprint"`
	CustomWords  []string `json:"custom_words"`
	CustomSpaces bool     `json:"custom_spaces"`
	Capacity     int      `json:"capacity"`
	Descriptor   []byte   `json:"descriptor"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Offset *int   `json:"offset,omitempty"`
}

// errFingerprint is returned when a request names an engine other than the
// one its options select.
var errFingerprint = errors.New("server: engine fingerprint mismatch")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleEngine(w http.ResponseWriter, r *http.Request) {
	var opts EngineOptions
	if r.Method == http.MethodPost && !s.decode(w, r, &opts) {
		return
	}
	e, err := s.engine(opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	desc, err := e.MarshalBinary()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, engineResponse{
		Fingerprint:  fingerprint(e),
		CustomWords:  e.CustomWords(),
		CustomSpaces: e.CustomSpaces(),
		Capacity:     e.CustomCapacity(),
		Descriptor:   desc,
	})
}

func (s *Server) handleCompress(w http.ResponseWriter, r *http.Request) {
	var req compressRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.engine(req.EngineOptions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data := e.Compress(req.Text)
	s.reply(w, compressResponse{
		Data:         data,
		Size:         len(data),
		OriginalSize: len(req.Text),
		Fingerprint:  fingerprint(e),
	})
}

func (s *Server) handleDecompress(w http.ResponseWriter, r *http.Request) {
	var req decompressRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.engine(req.EngineOptions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	text, err := e.Decompress(req.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, decompressResponse{Text: text})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	var req compressRequest
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.engine(req.EngineOptions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := tokensResponse{Tokens: []tokenJSON{}}
	e.Scan(req.Text, func(t bytesize.Token, covered string) bool {
		resp.Tokens = append(resp.Tokens, tokenJSON{
			Kind:  t.Kind.String(),
			Text:  covered,
			Bytes: t.EncodedLen(),
			Token: t.String(),
		})
		resp.Size += t.EncodedLen()
		return true
	})
	s.reply(w, resp)
}

// engine returns the engine selected by opts, building and caching it when
// the options differ from the defaults.
func (s *Server) engine(opts EngineOptions) (*bytesize.Engine, error) {
	e := s.defaults
	if opts.CustomWords != nil || opts.CustomSpaces != nil {
		cfg := bytesize.Config{
			CustomWords:  s.defaults.CustomWords(),
			CustomSpaces: s.defaults.CustomSpaces(),
		}
		if opts.CustomWords != nil {
			cfg.CustomWords = opts.CustomWords
		}
		if opts.CustomSpaces != nil {
			cfg.CustomSpaces = *opts.CustomSpaces
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		key := cacheKey(cfg)
		if cached, ok := s.engines.Get(key); ok {
			e = cached.(*bytesize.Engine)
		} else {
			e = cfg.Builder().SetLogger(s.log).Engine()
			s.engines.SetDefault(key, e)
		}
	}
	if opts.Fingerprint != "" && opts.Fingerprint != fingerprint(e) {
		return nil, fmt.Errorf("%w: request %s, engine %s", errFingerprint, opts.Fingerprint, fingerprint(e))
	}
	return e, nil
}

func cacheKey(cfg bytesize.Config) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatBool(cfg.CustomSpaces))
	for _, w := range cfg.CustomWords {
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(w))
	}
	return sb.String()
}

func fingerprint(e *bytesize.Engine) string {
	return fmt.Sprintf("%016x", e.Fingerprint())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}
	var de *bytesize.DecodeError
	switch {
	case errors.As(err, &de):
		status = http.StatusUnprocessableEntity
		resp.Offset = &de.Offset
	case errors.Is(err, bytesize.ErrEmptyCustomWord):
		status = http.StatusBadRequest
	case errors.Is(err, errFingerprint):
		status = http.StatusConflict
	}
	entry := s.log.WithFields(logrus.Fields{
		"request_id": r.Header.Get(RequestIDHeader),
		"status":     status,
	}).WithError(err)
	if status == http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) reply(w http.ResponseWriter, v any) {
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("writing response")
	}
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logRequests assigns every request an id and logs it once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"took":       time.Since(start),
		}).Info("request")
	})
}
