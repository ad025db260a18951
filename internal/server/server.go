// Package server exposes the randomizer over HTTP for the browser front-end.
//
// A request body is the options text followed by the ROM image. The ConfLength
// header gives the length of the options text and the optional Seed header
// fixes the seed. The response body is the randomized image and the seed used
// is echoed in the Seed header.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/drsam94/mmbccr/internal/options"
	"github.com/drsam94/mmbccr/pkg/rando"
	"github.com/drsam94/mmbccr/pkg/rom"
)

// Request and response headers.
const (
	HeaderConfLength = "ConfLength"
	HeaderSeed       = "Seed"
)

// DefaultMaxBodyBytes caps a request body when Config.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 64 << 20

const shutdownTimeout = 5 * time.Second

// Config configures the handler.
type Config struct {
	Logger *zap.Logger
	// NamePool replaces any name file a request names. Requests enabling
	// name randomization fail when it is empty.
	NamePool     []string
	MaxBodyBytes int64
}

type service struct {
	log      *zap.Logger
	namePool []string
	maxBody  int64
}

// NewHandler returns the HTTP handler for the randomizer front-end.
func NewHandler(cfg Config) http.Handler {
	s := &service{
		log:      cfg.Logger,
		namePool: cfg.NamePool,
		maxBody:  cfg.MaxBodyBytes,
	}

	if s.log == nil {
		s.log = zap.NewNop()
	}

	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet, http.MethodPost:
			s.randomize(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return s.logRequests(withCORS(mux))
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info("serving", zap.Stringer("addr", ln.Addr()))

	errCh := make(chan error, 1)

	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("stopped")

	return nil
}

func (s *service) randomize(w http.ResponseWriter, r *http.Request) {
	confLen := 0

	if v := r.Header.Get(HeaderConfLength); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad "+HeaderConfLength+" header", http.StatusBadRequest)

			return
		}

		confLen = n
	}

	var seed *uint64

	if v := r.Header.Get(HeaderSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "bad "+HeaderSeed+" header", http.StatusBadRequest)

			return
		}

		seed = &n
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)

			return
		}

		http.Error(w, "read body", http.StatusBadRequest)

		return
	}

	if confLen > len(body) {
		http.Error(w, HeaderConfLength+" exceeds body", http.StatusBadRequest)

		return
	}

	opts, err := options.Parse(body[:confLen])
	if err != nil {
		s.fail(w, err)

		return
	}

	if opts.Names.RandomizeNames {
		opts.NamePool = s.namePool
	}

	img, err := rom.New(body[confLen:])
	if err != nil {
		s.fail(w, err)

		return
	}

	used, stats, err := rando.Randomize(img, opts, seed, s.log)
	if err != nil {
		s.fail(w, err)

		return
	}

	if stats.Lossy() > 0 {
		s.log.Warn("lossy run", zap.Uint64("seed", used), zap.Object("stats", stats))
	}

	h := w.Header()
	h.Set(HeaderSeed, strconv.FormatUint(used, 10))
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Length", strconv.Itoa(img.Len()))
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(img.Bytes())
}

func (s *service) fail(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.log.Error("randomize failed", zap.Error(err))
	}

	http.Error(w, err.Error(), code)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, rom.ErrUnknownSignature):
		return http.StatusUnprocessableEntity
	case errors.Is(err, options.ErrInvalid), errors.Is(err, rando.ErrUnsupportedOption):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
