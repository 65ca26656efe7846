// Package kvserver provides the TCP front end for the PredKV store.
//
// Clients exchange length-prefixed JSON frames (see internal/protocol).
// Each accepted connection is served by its own goroutine; connections
// are independent and requests within one connection are handled in
// order. Store-level consistency comes from the storage layer's
// locking, not from the server.
package kvserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/predkv/predkv/internal/protocol"
	"github.com/predkv/predkv/internal/storage/memory"
	"github.com/predkv/predkv/internal/telemetry/metric"
)

// Config holds the TCP server configuration.
type Config struct {
	// Address is the listen address.
	Address string
	// ReadTimeout is the timeout for reading one request frame (default: 30s).
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing one response frame (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of requests per second per IP.
	// Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:65535",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    0,
	}
}

// Server is the PredKV TCP server.
type Server struct {
	cfg        *Config
	dispatcher *Dispatcher
	logger     *slog.Logger
	metrics    *metric.Metrics

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	limiterMu sync.RWMutex
	limiters  map[string]*rate.Limiter
}

// New creates a new server over the given store.
func New(cfg *Config, store *memory.Store, logger *slog.Logger, metrics *metric.Metrics) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		dispatcher: NewDispatcher(store, logger, metrics),
		logger:     logger,
		metrics:    metrics,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Start binds the listener and begins accepting connections. The bind
// happens synchronously so an unusable address is reported to the
// caller; accepting runs in the background until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("accept loop error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting connections and waits for in-flight
// connections to finish, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(c)
		}()
	}
}

func (s *Server) serveConn(c net.Conn) {
	defer c.Close()

	connID := ulid.Make().String()
	logger := s.logger.With("conn", connID, "remote", c.RemoteAddr().String())
	logger.Debug("connection accepted")

	if s.metrics != nil {
		s.metrics.ConnectionsActive.Inc()
		defer s.metrics.ConnectionsActive.Dec()
	}

	limiter := s.limiterFor(c.RemoteAddr())

	readTimeout := s.cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 5 * time.Minute
	}

	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)

	for {
		// First byte: allow the connection to sit idle between requests.
		if err := c.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if _, err := br.Peek(1); err != nil {
			logReadEnd(logger, err)
			return
		}

		// After first byte: tighten to the per-request read timeout.
		if err := c.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		req, err := protocol.ReadRequest(br)
		if err != nil {
			// Malformed framing or undecodable JSON leaves the stream
			// position unknown, so the connection cannot be reused.
			logReadEnd(logger, err)
			return
		}

		if limiter != nil && !limiter.Allow() {
			logger.Warn("rate limit exceeded, closing connection")
			return
		}

		resp := s.dispatcher.Dispatch(req)

		if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := protocol.WriteResponse(bw, resp); err != nil {
			logger.Debug("write error", "error", err)
			return
		}
		if err := bw.Flush(); err != nil {
			logger.Debug("flush error", "error", err)
			return
		}
	}
}

// limiterFor returns the per-IP limiter, or nil when rate limiting is
// disabled.
func (s *Server) limiterFor(addr net.Addr) *rate.Limiter {
	if s.cfg.RateLimit <= 0 {
		return nil
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}

	s.limiterMu.RLock()
	limiter, ok := s.limiters[host]
	s.limiterMu.RUnlock()
	if ok {
		return limiter
	}

	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	if limiter, ok := s.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimit)
	s.limiters[host] = limiter
	return limiter
}

func logReadEnd(logger *slog.Logger, err error) {
	if errors.Is(err, io.EOF) {
		logger.Debug("connection closed by client")
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.Debug("connection timed out")
		return
	}
	logger.Debug("connection read error", "error", err)
}
