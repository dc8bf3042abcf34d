// Package accept implements the connection accept loop: one worker
// goroutine per connection, gated by a counting semaphore enforcing
// server.max_connections.
package accept

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/hobbs-bbs/hobbs/internal/logging"
	"github.com/hobbs-bbs/hobbs/internal/telnet"
)

// WorkerFunc runs one accepted connection to completion. It owns conn
// exclusively: no other goroutine touches it once WorkerFunc is
// called. sessionID is a process-unique identifier assigned before the
// worker starts, used to register with the session registry.
type WorkerFunc func(ctx context.Context, conn *telnet.Conn, sessionID int)

// Config controls the accept loop.
type Config struct {
	Host           string
	Port           int
	MaxConnections int
	Worker         WorkerFunc
}

// Server owns the listener and the connection-count semaphore.
type Server struct {
	cfg      Config
	mu       sync.Mutex
	listener net.Listener
	sem      chan struct{}
	nextID   int64
}

// NewServer validates cfg and builds a Server ready to Serve.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Worker == nil {
		return nil, fmt.Errorf("accept: worker is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("accept: invalid port %d", cfg.Port)
	}
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 64
	}
	return &Server{
		cfg: cfg,
		sem: make(chan struct{}, cfg.MaxConnections),
	}, nil
}

// Serve listens and accepts connections until ctx is canceled or the
// listener is closed. It blocks.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("accept: listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	log.Printf("INFO: accept loop listening on %s (max_connections=%d)", addr, s.cfg.MaxConnections)

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.listener == nil
			s.mu.Unlock()
			if closed {
				return nil
			}
			log.Printf("ERROR: accept: %v", err)
			continue
		}

		select {
		case s.sem <- struct{}{}:
			logging.Debug("accept: permit acquired for %s (%d/%d in use)", conn.RemoteAddr(), len(s.sem), cap(s.sem))
			go s.handle(ctx, conn)
		default:
			log.Printf("WARN: accept: max_connections (%d) reached, rejecting %s", s.cfg.MaxConnections, conn.RemoteAddr())
			conn.Close()
		}
	}
}

// handle negotiates telnet options, assigns a session id and runs the
// configured worker. The permit release and connection close are
// deferred so they happen on every exit path, panics included.
func (s *Server) handle(ctx context.Context, nc net.Conn) {
	remoteAddr := nc.RemoteAddr().String()

	defer func() {
		<-s.sem
		if r := recover(); r != nil {
			log.Printf("ERROR: accept: panic handling %s: %v", remoteAddr, r)
		}
		nc.Close()
		log.Printf("INFO: connection closed: %s", remoteAddr)
	}()

	log.Printf("INFO: connection accepted: %s", remoteAddr)

	conn := telnet.NewConn(nc)
	if err := conn.Negotiate(); err != nil {
		log.Printf("WARN: accept: telnet negotiation failed for %s: %v", remoteAddr, err)
	}

	sessionID := int(atomic.AddInt64(&s.nextID, 1))
	s.cfg.Worker(ctx, conn, sessionID)
}

// Close shuts down the listener, causing Serve to return.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		err := s.listener.Close()
		s.listener = nil
		return err
	}
	return nil
}

// Available reports how many connection permits remain free, used by
// admin/status screens.
func (s *Server) Available() int {
	return cap(s.sem) - len(s.sem)
}
