// Package server runs the TCP request server: one listener accepting
// connections, each handed to a worker pool, each connection decoding a
// stream of protocol.Request values and writing back one protocol.Response
// per request.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/backend"
	"github.com/ignitedb/ignite/internal/workerpool"
	"github.com/ignitedb/ignite/pkg/protocol"
)

// NewHandlerStore produces the backend.Store a single connection should
// use, plus an optional cleanup func run when the connection closes. For
// the native engine this is engine.Clone — a private reader-pool cache per
// connection; for an external backend like bbolt, which manages its own
// concurrency, it can just return the shared store and a nil cleanup.
type NewHandlerStore func() (backend.Store, func())

// Config holds everything Server needs to start listening.
type Config struct {
	Addr            string
	NewHandlerStore NewHandlerStore
	Pool            workerpool.Pool
	Logger          *zap.SugaredLogger
}

// Server accepts TCP connections and dispatches each request on them
// against a backend.Store.
type Server struct {
	cfg Config
	ln  net.Listener
}

// New constructs a Server. Call Serve to start accepting connections.
func New(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// Serve listens on cfg.Addr and accepts connections until ctx is canceled
// or the listener is closed via Close.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	s.cfg.Logger.Infow("Server listening", "addr", s.cfg.Addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.cfg.Pool.Submit(func() { s.handle(conn) })
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// handle serves one connection end-to-end: decode a request, dispatch it,
// encode and flush the response, repeat until the client disconnects or a
// framing error occurs. A failure on this connection never reaches any
// other connection's handler.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	store, cleanup := s.cfg.NewHandlerStore()
	if cleanup != nil {
		defer cleanup()
	}

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	dec := json.NewDecoder(r)

	for {
		var req protocol.Request
		if err := dec.Decode(&req); err != nil {
			if err != io.EOF {
				s.cfg.Logger.Warnw("Failed decoding request, closing connection", "remote", conn.RemoteAddr(), "error", err)
			}
			return
		}

		resp := dispatch(store, req)

		b, err := json.Marshal(resp)
		if err != nil {
			s.cfg.Logger.Errorw("Failed encoding response, closing connection", "remote", conn.RemoteAddr(), "error", err)
			return
		}
		if _, err := w.Write(b); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func dispatch(store backend.Store, req protocol.Request) protocol.Response {
	switch {
	case req.Get != nil:
		value, found, err := store.Get(req.Get.Key)
		if err != nil {
			return protocol.ErrGetResponse(err.Error())
		}
		if !found {
			return protocol.OkGetResponse(nil)
		}
		return protocol.OkGetResponse(&value)

	case req.Set != nil:
		if err := store.Set(req.Set.Key, req.Set.Value); err != nil {
			return protocol.ErrSetResponse(err.Error())
		}
		return protocol.OkSetResponse()

	case req.Remove != nil:
		if err := store.Remove(req.Remove.Key); err != nil {
			return protocol.ErrRemoveResponse(err.Error())
		}
		return protocol.OkRemoveResponse()

	default:
		return protocol.ErrGetResponse("undefined request")
	}
}
