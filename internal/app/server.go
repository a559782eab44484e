// Package app wires every component — acceptor, reader pool, writer
// pool, bounded queue, connection registry, ranking engine, finalizer,
// and admin HTTP listener — into one orchestrator with an explicit
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/podium/internal/adapters/http/admin"
	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/adapters/mq/worker"
	podiumnet "github.com/okian/podium/internal/adapters/net"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/protocol"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/finalize"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// state is the server's lifecycle state.
type state int32

const (
	stateStarting state = iota
	stateAccepting
	stateDraining
	stateStopped
)

const (
	drainTimeout = 30 * time.Second
)

// Server is the TCP aggregator orchestrator.
type Server struct {
	cfg    *config.Config
	logger logger.Logger

	listener  net.Listener
	adminSrv  *http.Server
	registry  *podiumnet.Registry
	queue     *queue.BoundedQueue[model.Record]
	pool      *worker.Pool
	engine    *ranking.Engine
	readerSem chan struct{}

	state   atomic.Int32
	wg      sync.WaitGroup
	stopped chan struct{}
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Server from cfg.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger.Get().Named("app"),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(int32(stateStarting))
	return s
}

// Start constructs every component, begins accepting connections, and
// starts the admin HTTP listener. It returns once the TCP listener is
// bound; the admin HTTP listener binds in a background goroutine, and a
// failure there is logged rather than returned.
func (s *Server) Start(ctx context.Context) error {
	s.registry = podiumnet.NewRegistry()
	s.engine = ranking.New(
		ranking.WithDeltaT(time.Duration(s.cfg.DeltaTMillis)*time.Millisecond),
		ranking.WithLogger(s.logger.Named("ranking")),
	)
	s.queue = queue.New[model.Record](
		queue.WithCapacity[model.Record](s.cfg.QueueCapacity),
		queue.WithName[model.Record]("ingest"),
	)
	s.pool = worker.NewPool(s.cfg.WriterPoolSize, s.queue, s.engine)
	s.readerSem = make(chan struct{}, s.cfg.ReaderPoolSize)

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	admin.NewServer(s, s.engine).Register(mux)
	s.adminSrv = &http.Server{Addr: s.cfg.AdminAddr, Handler: mux}

	s.pool.Start(ctx)

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "admin http server failed", logger.Error(err))
		}
	}()

	s.state.Store(int32(stateAccepting))
	s.logger.Info(ctx, "server accepting connections",
		logger.String("listen_addr", s.cfg.ListenAddr),
		logger.String("admin_addr", s.cfg.AdminAddr),
		logger.Int("reader_pool_size", s.cfg.ReaderPoolSize),
		logger.Int("writer_pool_size", s.cfg.WriterPoolSize),
	)
	return nil
}

// acceptLoop accepts connections until the listener is closed.
func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopped:
				return
			default:
				s.logger.Warn(ctx, "accept failed", logger.Error(err))
				return
			}
		}

		c := podiumnet.NewConnection(conn)
		s.registry.Insert(c)

		s.wg.Add(1)
		go s.handleConnection(ctx, c)
	}
}

// handleConnection runs the reader-pool path for one client: handshake,
// then a loop of batch/ranking/final lines, until the session ends.
func (s *Server) handleConnection(ctx context.Context, c *podiumnet.Connection) {
	defer s.wg.Done()
	defer func() {
		if err := c.Shutdown(); err != nil {
			s.logger.Warn(ctx, "connection shutdown error", logger.String("id", c.ID), logger.Error(err))
		}
	}()
	defer s.registry.Remove(c.ID)

	select {
	case s.readerSem <- struct{}{}:
		defer func() { <-s.readerSem }()
	case <-s.stopped:
		return
	}

	handshake, err := c.ReadLine()
	if err != nil {
		metrics.RecordConnectionError("handshake_io")
		return
	}
	countryID, err := protocol.ParseHandshake(handshake)
	if err != nil {
		metrics.RecordConnectionError("handshake_parse")
		s.logger.Warn(ctx, "malformed handshake", logger.String("id", c.ID), logger.Error(err))
		return
	}
	c.CountryID = countryID

	for {
		line, err := c.ReadLine()
		if err != nil {
			return
		}

		msg, err := protocol.ParseLine(line, c.CountryID)
		if err != nil {
			metrics.RecordBatchLineDropped("malformed")
			s.logger.Debug(ctx, "dropped malformed line", logger.String("id", c.ID))
			continue
		}

		switch msg.Kind {
		case protocol.KindBatch:
			if !s.queue.Push(msg.Batch, time.Duration(s.cfg.PushTimeoutMillis)*time.Millisecond) {
				metrics.RecordBatchLineDropped("backpressure")
			}
		case protocol.KindRankingRequest:
			payload := s.engine.RequestRanking(ctx)
			if err := c.Write([]byte(payload)); err != nil {
				metrics.RecordConnectionError("write")
				return
			}
		case protocol.KindFinalRequest:
			s.handleFinalRequest(ctx, c)
			return
		}
	}
}

// handleFinalRequest snapshots the ledger, writes and reads back the two
// output files, and sends the combined frame. The connection is always
// closed afterward, per the finalize-completion lifecycle rule.
func (s *Server) handleFinalRequest(ctx context.Context, c *podiumnet.Connection) {
	snapshot := s.engine.Snapshot()
	result, err := finalize.Finalize(snapshot, s.cfg.FinalCompetitorsFile, s.cfg.FinalCountriesFile)
	if err != nil {
		s.logger.Error(ctx, "finalize failed", logger.Error(err))
		metrics.RecordConnectionError("finalize")
		return
	}
	if err := c.Write([]byte(result.Frame())); err != nil {
		metrics.RecordConnectionError("write")
	}
}

// Addr returns the TCP acceptor's bound address. Useful when the
// configured ListenAddr uses an ephemeral port (":0").
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stats implements admin.StatsProvider.
func (s *Server) Stats() map[string]any {
	return map[string]any{
		"state":              s.State(),
		"connections_active": s.registry.Len(),
		"queue_depth":        s.queue.Len(),
	}
}

// State reports the server's lifecycle state as a string.
func (s *Server) State() string {
	switch state(s.state.Load()) {
	case stateStarting:
		return "starting"
	case stateAccepting:
		return "accepting"
	case stateDraining:
		return "draining"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stop drains and stops every component: stop accepting, shut down the
// queue and all connections, wait for both pools to drain, then close
// the admin listener.
func (s *Server) Stop(ctx context.Context) error {
	s.state.Store(int32(stateDraining))
	close(s.stopped)

	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.queue.Shutdown()
	s.registry.ShutdownAll(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown error", logger.Error(err))
	}
	if s.adminSrv != nil {
		if err := s.adminSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "admin server shutdown error", logger.Error(err))
		}
	}

	s.wg.Wait()
	s.state.Store(int32(stateStopped))
	s.logger.Info(ctx, "server stopped")
	return nil
}
